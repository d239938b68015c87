package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/hirepipe/internal/domain"
)

// SheetsExporter writes a table into a spreadsheet tab
type SheetsExporter interface {
	Export(ctx context.Context, table SheetTable) (SheetsExportResult, error)
}

// SheetTable is a header row plus data rows bound for one tab
type SheetTable struct {
	SpreadsheetID string
	Tab           string
	Header        []string
	Rows          [][]any
	// Replace clears the tab and rewrites it; otherwise rows are appended
	Replace bool
}

// SheetsExportParams defines the arguments for the sheets_export tool
type SheetsExportParams struct {
	Resource      string `json:"resource" jsonschema:"candidates or jobs"`
	Status        string `json:"status,omitempty" jsonschema:"Optional status filter"`
	SpreadsheetID string `json:"spreadsheet_id" jsonschema:"Google Sheets document ID"`
	Tab           string `json:"tab,omitempty" jsonschema:"Tab name; defaults to the resource name"`
	Replace       bool   `json:"replace,omitempty" jsonschema:"Clear the tab and rewrite it instead of appending"`
}

// SheetsExportResult describes the summary returned after export
type SheetsExportResult struct {
	SpreadsheetID string    `json:"spreadsheet_id"`
	Tab           string    `json:"tab"`
	WrittenRows   int       `json:"written_rows"`
	Mode          string    `json:"mode"`
	CompletedAt   time.Time `json:"completed_at"`
}

var (
	candidateHeader = []string{"ID", "Name", "Email", "Source", "Status", "Match Score", "Skills", "Created"}
	jobHeader       = []string{"ID", "Title", "Location", "Type", "Status", "Created"}

	errSheetsDisabled = errors.New("sheets not configured (set GOOGLE_SHEETS_CREDENTIALS)")
)

type sheetsTool struct {
	reg        *registry
	candidates CandidateHooks
	jobs       JobHooks
	exporter   SheetsExporter
}

// WithSheetsExport registers sheets_export; exporter may be nil when Sheets is not configured
func WithSheetsExport(candidates CandidateHooks, jobs JobHooks, exporter SheetsExporter) Option {
	return func(reg *registry) {
		t := &sheetsTool{reg: reg, candidates: candidates, jobs: jobs, exporter: exporter}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "sheets_export",
			Description: "Export the candidate or job list to a Google Sheets tab",
		}, t.handle)
	}
}

func (t *sheetsTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params SheetsExportParams) (*sdkmcp.CallToolResult, any, error) {
	ctx, c := t.reg.begin(ctx, "sheets_export")
	if t.exporter == nil {
		return c.fail(errSheetsDisabled), nil, nil
	}
	if params.SpreadsheetID == "" {
		return c.fail(errors.New("spreadsheet_id is required")), nil, nil
	}

	table := SheetTable{
		SpreadsheetID: params.SpreadsheetID,
		Tab:           params.Tab,
		Replace:       params.Replace,
	}

	switch strings.ToLower(params.Resource) {
	case domain.KindCandidates:
		r := t.candidates.Candidates(ctx, domain.CandidateFilters{Status: domain.CandidateStatus(params.Status)})
		if r.Err != nil {
			return c.fail(r.Err), nil, nil
		}
		table.Header, table.Rows = candidateHeader, candidateRows(r.Data)
	case domain.KindJobs:
		r := t.jobs.Jobs(ctx, domain.JobFilters{Status: domain.JobStatus(params.Status)})
		if r.Err != nil {
			return c.fail(r.Err), nil, nil
		}
		table.Header, table.Rows = jobHeader, jobRows(r.Data)
	default:
		return c.fail(fmt.Errorf("resource must be %q or %q", domain.KindCandidates, domain.KindJobs)), nil, nil
	}
	if table.Tab == "" {
		table.Tab = strings.ToLower(params.Resource)
	}

	res, err := t.exporter.Export(ctx, table)
	if err != nil {
		return c.fail(err), nil, nil
	}
	return c.ok(jsonBlock(res)), nil, nil
}

func candidateRows(candidates []domain.Candidate) [][]any {
	rows := make([][]any, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []any{
			int64(c.ID),
			c.Name(),
			c.Email,
			string(c.Source),
			c.Status.Label(),
			c.MatchScore,
			strings.Join(c.SkillNames(), ", "),
			sheetDate(c.CreatedAt),
		})
	}
	return rows
}

func jobRows(jobs []domain.Job) [][]any {
	rows := make([][]any, 0, len(jobs))
	for _, j := range jobs {
		status := string(j.Status)
		if status == "" {
			status = string(domain.JobOpen)
		}
		rows = append(rows, []any{
			int64(j.ID),
			j.Title,
			j.Location,
			j.JobType,
			status,
			sheetDate(j.CreatedAt),
		})
	}
	return rows
}

func sheetDate(ts domain.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(time.DateOnly)
}
