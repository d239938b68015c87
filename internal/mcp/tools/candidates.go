package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/araddon/dateparse"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/hirepipe/internal/domain"
	"github.com/honeycarbs/hirepipe/internal/query"
	"github.com/honeycarbs/hirepipe/internal/service"
)

// CandidateHooks is the candidate half of the hooks layer
type CandidateHooks interface {
	Candidates(ctx context.Context, filters domain.CandidateFilters) query.Result[[]domain.Candidate]
	Candidate(ctx context.Context, id domain.CandidateID) query.Result[domain.Candidate]
	UploadCandidate(ctx context.Context, in service.CandidateUpload) (domain.Candidate, error)
	ContactCandidate(ctx context.Context, id domain.CandidateID, jobID domain.JobID) (domain.Ack, error)
	ScheduleInterview(ctx context.Context, id domain.CandidateID, in service.Interview) (domain.Ack, error)
}

type ListCandidatesParams struct {
	Skip   int    `json:"skip,omitempty" jsonschema:"Number of candidates to skip"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of candidates to return"`
	Source string `json:"source,omitempty" jsonschema:"applied, referral, linkedin, cvlibrary or naukri"`
	Status string `json:"status,omitempty" jsonschema:"new, contacted, interview_scheduled, hired or rejected"`
}

type CandidateParams struct {
	ID int64 `json:"id" jsonschema:"Candidate identifier"`
}

type UploadCandidateParams struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	ResumePath string `json:"resume_path" jsonschema:"Path of the resume file on the server host"`
}

type ContactCandidateParams struct {
	ID    int64 `json:"id" jsonschema:"Candidate identifier"`
	JobID int64 `json:"job_id,omitempty" jsonschema:"Job the invitation is about"`
}

type ScheduleInterviewParams struct {
	ID       int64  `json:"id" jsonschema:"Candidate identifier"`
	DateTime string `json:"date_time" jsonschema:"Interview date and time, e.g. 2024-08-15T14:00"`
	JobID    int64  `json:"job_id,omitempty"`
}

type candidateTools struct {
	reg   *registry
	hooks CandidateHooks
	pages *sessionPages[domain.CandidateFilters, domain.Candidate]
}

// WithCandidateTools registers the candidate read and write tools. pages makes
// the list view each MCP session reads list_candidates through.
func WithCandidateTools(hooks CandidateHooks, pages func() ListPages[domain.CandidateFilters, domain.Candidate]) Option {
	return func(reg *registry) {
		t := &candidateTools{reg: reg, hooks: hooks, pages: newSessionPages(pages)}

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "list_candidates",
			Description: "List candidates in the recruitment pipeline, optionally filtered by source and status",
		}, t.list)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "get_candidate",
			Description: "Show one candidate with skills, match score and feedback",
		}, t.get)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "upload_candidate",
			Description: "Create a candidate from contact details and a resume file",
		}, t.upload)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "contact_candidate",
			Description: "Email a candidate an interview invitation",
		}, t.contact)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "schedule_interview",
			Description: "Schedule an interview with a candidate",
		}, t.schedule)
	}
}

func (t *candidateTools) list(ctx context.Context, req *sdkmcp.CallToolRequest, params ListCandidatesParams) (*sdkmcp.CallToolResult, any, error) {
	ctx, c := t.reg.begin(ctx, "list_candidates")
	r := t.pages.forSession(req.Session).Read(ctx, domain.CandidateFilters{
		Skip:   params.Skip,
		Limit:  params.Limit,
		Source: domain.Source(params.Source),
		Status: domain.CandidateStatus(params.Status),
	})
	return readResult(c, r), nil, nil
}

func (t *candidateTools) get(ctx context.Context, _ *sdkmcp.CallToolRequest, params CandidateParams) (*sdkmcp.CallToolResult, any, error) {
	ctx, c := t.reg.begin(ctx, "get_candidate")
	return readResult(c, t.hooks.Candidate(ctx, domain.CandidateID(params.ID))), nil, nil
}

func (t *candidateTools) upload(ctx context.Context, _ *sdkmcp.CallToolRequest, params UploadCandidateParams) (*sdkmcp.CallToolResult, any, error) {
	ctx, c := t.reg.begin(ctx, "upload_candidate")

	f, err := os.Open(params.ResumePath)
	if err != nil {
		return c.fail(fmt.Errorf("open resume: %w", err)), nil, nil
	}
	defer func() { _ = f.Close() }()

	created, err := t.hooks.UploadCandidate(ctx, service.CandidateUpload{
		FirstName:  params.FirstName,
		LastName:   params.LastName,
		Email:      params.Email,
		Phone:      params.Phone,
		ResumeName: filepath.Base(params.ResumePath),
		Resume:     f,
	})
	if err != nil {
		return c.fail(err), nil, nil
	}
	return c.ok(jsonBlock(created)), nil, nil
}

func (t *candidateTools) contact(ctx context.Context, _ *sdkmcp.CallToolRequest, params ContactCandidateParams) (*sdkmcp.CallToolResult, any, error) {
	ctx, c := t.reg.begin(ctx, "contact_candidate")
	ack, err := t.hooks.ContactCandidate(ctx, domain.CandidateID(params.ID), domain.JobID(params.JobID))
	if err != nil {
		return c.fail(err), nil, nil
	}
	return c.ok(ackText(ack)), nil, nil
}

func (t *candidateTools) schedule(ctx context.Context, _ *sdkmcp.CallToolRequest, params ScheduleInterviewParams) (*sdkmcp.CallToolResult, any, error) {
	ctx, c := t.reg.begin(ctx, "schedule_interview")

	when, err := parseWhen(params.DateTime)
	if err != nil {
		return c.fail(err), nil, nil
	}

	ack, err := t.hooks.ScheduleInterview(ctx, domain.CandidateID(params.ID), service.Interview{
		DateTime: when,
		JobID:    domain.JobID(params.JobID),
	})
	if err != nil {
		return c.fail(err), nil, nil
	}
	return c.ok(ackText(ack)), nil, nil
}

// parseWhen accepts any common date layout and reads it as local wall-clock time
func parseWhen(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date_time is required")
	}
	if when, err := time.ParseInLocation(service.DateTimeLayout, s, time.Local); err == nil {
		return when, nil
	}
	when, err := dateparse.ParseLocal(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date_time %q: %w", s, err)
	}
	return when, nil
}

func ackText(ack domain.Ack) string {
	if ack.Message == "" {
		return "done"
	}
	return ack.Message
}
