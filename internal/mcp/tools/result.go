package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/hirepipe/internal/notify"
	"github.com/honeycarbs/hirepipe/internal/query"
	"github.com/honeycarbs/hirepipe/internal/session"
	"github.com/honeycarbs/hirepipe/pkg/api"
)

const (
	previousPageNote = "(previous page: results for these filters are still loading; call again to see them)"
	staleNote        = "(stale: served from cache while refreshing)"

	// a read that joins another call's request gets its error but not its notifications
	sharedFailureNote = "(this read joined a request already started by another call; the notifications for the failure went to that call)"
)

// textResult returns a text-only ToolResult
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

// call collects what a dashboard user would have been shown while one tool ran
type call struct {
	tool     string
	notes    *notify.Collector
	redirect *session.Redirect
	hint     string
}

func (r *registry) begin(ctx context.Context, tool string) (context.Context, *call) {
	ctx, notes := notify.Collect(ctx)
	ctx, redirect := session.CaptureRedirect(ctx)
	return ctx, &call{tool: tool, notes: notes, redirect: redirect}
}

func (c *call) ok(body string) *sdkmcp.CallToolResult {
	return textResult(c.render(body))
}

func (c *call) fail(err error) *sdkmcp.CallToolResult {
	res := textResult(c.render(fmt.Sprintf("%s failed: %v", c.tool, err)))
	res.IsError = true
	return res
}

func (c *call) render(body string) string {
	var sb strings.Builder
	sb.WriteString(body)
	if c.hint != "" {
		sb.WriteString("\n")
		sb.WriteString(c.hint)
	}

	if items := c.notes.Notifications(); len(items) > 0 {
		sb.WriteString("\n\nnotifications:")
		for _, n := range items {
			fmt.Fprintf(&sb, "\n- %s: %s", n.Level, n.Message)
		}
	}
	if path, ok := c.redirect.Path(); ok {
		fmt.Fprintf(&sb, "\n\nredirect: %s", path)
	}
	return sb.String()
}

// readResult renders a cached read
func readResult[T any](c *call, r query.Result[T]) *sdkmcp.CallToolResult {
	switch {
	case r.Err != nil:
		if len(c.notes.Notifications()) == 0 && notifiesOnFailure(r.Err) {
			c.hint = sharedFailureNote
		}
		return c.fail(r.Err)
	case r.Status == query.StatusIdle:
		return c.ok("nothing requested")
	}

	body := jsonBlock(r.Data)
	switch {
	case r.IsPreviousData:
		body += "\n" + previousPageNote
	case r.IsStale:
		body += "\n" + staleNote
	}
	return c.ok(body)
}

// notifiesOnFailure reports whether the client raised notifications for err
func notifiesOnFailure(err error) bool {
	kind, ok := api.KindOf(err)
	return ok && kind != api.KindClient
}

func jsonBlock(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
