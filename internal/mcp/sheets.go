package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/honeycarbs/hirepipe/internal/mcp/tools"
)

type sheetsWriter interface {
	AppendValues(ctx context.Context, spreadsheetID, range_ string, values [][]any) (int, error)
	UpdateValues(ctx context.Context, spreadsheetID, range_ string, values [][]any) (int, error)
	ClearValues(ctx context.Context, spreadsheetID, range_ string) error
}

// sheetsExporter writes tool tables through the Sheets client
type sheetsExporter struct {
	client sheetsWriter
	clock  func() time.Time
}

func newSheetsExporter(client sheetsWriter) *sheetsExporter {
	return &sheetsExporter{client: client, clock: time.Now}
}

func (e *sheetsExporter) Export(ctx context.Context, table tools.SheetTable) (tools.SheetsExportResult, error) {
	result := tools.SheetsExportResult{
		SpreadsheetID: table.SpreadsheetID,
		Tab:           table.Tab,
		Mode:          "append",
	}

	if table.Replace {
		result.Mode = "replace"
		if err := e.client.ClearValues(ctx, table.SpreadsheetID, tabRange(table.Tab, "A:Z")); err != nil {
			return result, err
		}

		values := make([][]any, 0, len(table.Rows)+1)
		values = append(values, headerRow(table.Header))
		values = append(values, table.Rows...)
		if _, err := e.client.UpdateValues(ctx, table.SpreadsheetID, tabRange(table.Tab, "A1"), values); err != nil {
			return result, err
		}
		result.WrittenRows = len(table.Rows)
	} else if len(table.Rows) > 0 {
		if _, err := e.client.AppendValues(ctx, table.SpreadsheetID, tabRange(table.Tab, "A1"), table.Rows); err != nil {
			return result, err
		}
		result.WrittenRows = len(table.Rows)
	}

	result.CompletedAt = e.clock().UTC()
	return result, nil
}

// tabRange builds an A1 range, quoting tab names that need it
func tabRange(tab, cells string) string {
	if tab == "" {
		tab = "Sheet1"
	}
	if strings.ContainsAny(tab, " '!") {
		tab = "'" + strings.ReplaceAll(tab, "'", "''") + "'"
	}
	return fmt.Sprintf("%s!%s", tab, cells)
}

func headerRow(header []string) []any {
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	return row
}
