package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/hirepipe/internal/domain"
	"github.com/honeycarbs/hirepipe/internal/query"
)

// JobHooks is the job half of the hooks layer
type JobHooks interface {
	Jobs(ctx context.Context, filters domain.JobFilters) query.Result[[]domain.Job]
	Job(ctx context.Context, id domain.JobID) query.Result[domain.Job]
	CreateJob(ctx context.Context, in domain.JobInput) (domain.Job, error)
	UpdateJob(ctx context.Context, id domain.JobID, patch domain.JobPatch) (domain.Job, error)
	SearchExternalCandidates(ctx context.Context, jobID domain.JobID, sources ...domain.Source) (domain.Ack, error)
}

type ListJobsParams struct {
	Skip   int    `json:"skip,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Status string `json:"status,omitempty" jsonschema:"open, closed or draft"`
}

type JobParams struct {
	ID int64 `json:"id" jsonschema:"Job identifier"`
}

type CreateJobParams struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Location     string `json:"location,omitempty"`
	JobType      string `json:"job_type" jsonschema:"e.g. full-time, part-time, contract"`
	Status       string `json:"status,omitempty" jsonschema:"open, closed or draft"`
}

// UpdateJobParams leaves omitted fields untouched
type UpdateJobParams struct {
	ID           int64   `json:"id"`
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Requirements *string `json:"requirements,omitempty"`
	Location     *string `json:"location,omitempty"`
	JobType      *string `json:"job_type,omitempty"`
	Status       *string `json:"status,omitempty"`
}

type SearchExternalParams struct {
	JobID   int64    `json:"job_id"`
	Sources []string `json:"sources,omitempty" jsonschema:"Job boards to search; defaults to linkedin, cvlibrary and naukri"`
}

type jobTools struct {
	reg   *registry
	hooks JobHooks
	pages *sessionPages[domain.JobFilters, domain.Job]
}

// WithJobTools registers the job read and write tools; list_jobs reads
// through a per-session view made by pages
func WithJobTools(hooks JobHooks, pages func() ListPages[domain.JobFilters, domain.Job]) Option {
	return func(reg *registry) {
		t := &jobTools{reg: reg, hooks: hooks, pages: newSessionPages(pages)}

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "list_jobs",
			Description: "List job postings, optionally filtered by status",
		}, t.list)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "get_job",
			Description: "Show one job posting",
		}, t.get)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "create_job",
			Description: "Create a job posting",
		}, t.create)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "update_job",
			Description: "Change fields of an existing job posting",
		}, t.update)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "search_external_candidates",
			Description: "Start a background search of external job boards for candidates matching a job",
		}, t.searchExternal)
	}
}

func (t *jobTools) list(ctx context.Context, req *sdkmcp.CallToolRequest, params ListJobsParams) (*sdkmcp.CallToolResult, any, error) {
	ctx, c := t.reg.begin(ctx, "list_jobs")
	r := t.pages.forSession(req.Session).Read(ctx, domain.JobFilters{
		Skip:   params.Skip,
		Limit:  params.Limit,
		Status: domain.JobStatus(params.Status),
	})
	return readResult(c, r), nil, nil
}

func (t *jobTools) get(ctx context.Context, _ *sdkmcp.CallToolRequest, params JobParams) (*sdkmcp.CallToolResult, any, error) {
	ctx, c := t.reg.begin(ctx, "get_job")
	return readResult(c, t.hooks.Job(ctx, domain.JobID(params.ID))), nil, nil
}

func (t *jobTools) create(ctx context.Context, _ *sdkmcp.CallToolRequest, params CreateJobParams) (*sdkmcp.CallToolResult, any, error) {
	ctx, c := t.reg.begin(ctx, "create_job")
	job, err := t.hooks.CreateJob(ctx, domain.JobInput{
		Title:        params.Title,
		Description:  params.Description,
		Requirements: params.Requirements,
		Location:     params.Location,
		JobType:      params.JobType,
		Status:       domain.JobStatus(params.Status),
	})
	if err != nil {
		return c.fail(err), nil, nil
	}
	return c.ok(jsonBlock(job)), nil, nil
}

func (t *jobTools) update(ctx context.Context, _ *sdkmcp.CallToolRequest, params UpdateJobParams) (*sdkmcp.CallToolResult, any, error) {
	ctx, c := t.reg.begin(ctx, "update_job")

	patch := domain.JobPatch{
		Title:        params.Title,
		Description:  params.Description,
		Requirements: params.Requirements,
		Location:     params.Location,
		JobType:      params.JobType,
	}
	if params.Status != nil {
		st := domain.JobStatus(*params.Status)
		patch.Status = &st
	}

	job, err := t.hooks.UpdateJob(ctx, domain.JobID(params.ID), patch)
	if err != nil {
		return c.fail(err), nil, nil
	}
	return c.ok(jsonBlock(job)), nil, nil
}

func (t *jobTools) searchExternal(ctx context.Context, _ *sdkmcp.CallToolRequest, params SearchExternalParams) (*sdkmcp.CallToolResult, any, error) {
	ctx, c := t.reg.begin(ctx, "search_external_candidates")

	sources := make([]domain.Source, 0, len(params.Sources))
	for _, s := range params.Sources {
		src := domain.Source(s)
		if !src.IsExternalBoard() {
			return c.fail(fmt.Errorf("unknown job board %q", s)), nil, nil
		}
		sources = append(sources, src)
	}

	ack, err := t.hooks.SearchExternalCandidates(ctx, domain.JobID(params.JobID), sources...)
	if err != nil {
		return c.fail(err), nil, nil
	}
	return c.ok(ackText(ack)), nil, nil
}
