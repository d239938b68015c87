package tools

import (
	"context"
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/hirepipe/internal/dashboard"
	"github.com/honeycarbs/hirepipe/internal/domain"
)

type DashboardStats interface {
	Stats(ctx context.Context) (dashboard.Stats, error)
}

// PipelineMirror copies the pipeline into a graph store and queries it
type PipelineMirror interface {
	UpsertCandidates(ctx context.Context, candidates []domain.Candidate) error
	UpsertJobs(ctx context.Context, jobs []domain.Job) error
	SkillDemand(ctx context.Context, limit int) ([]domain.SkillDemand, error)
}

type DashboardParams struct{}

type PipelineSnapshotParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"How many skills to report; default 10"`
}

// PipelineSnapshot is what pipeline_snapshot reports
type PipelineSnapshot struct {
	Candidates int                  `json:"candidates_mirrored"`
	Jobs       int                  `json:"jobs_mirrored"`
	Skills     []domain.SkillDemand `json:"top_skills"`
}

var errGraphDisabled = errors.New("graph store not configured (set NEO4J_URI)")

// WithDashboardTool registers dashboard_stats
func WithDashboardTool(stats DashboardStats) Option {
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "dashboard_stats",
			Description: "Pipeline overview: totals, open jobs, pending interviews, hires and recent candidates",
		}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ DashboardParams) (*sdkmcp.CallToolResult, any, error) {
			ctx, c := reg.begin(ctx, "dashboard_stats")
			st, err := stats.Stats(ctx)
			if err != nil {
				return c.fail(err), nil, nil
			}
			return c.ok(jsonBlock(st)), nil, nil
		})
	}
}

type pipelineTool struct {
	reg        *registry
	candidates CandidateHooks
	jobs       JobHooks
	mirror     PipelineMirror
}

// WithPipelineSnapshot registers pipeline_snapshot; mirror may be nil when no graph is configured
func WithPipelineSnapshot(candidates CandidateHooks, jobs JobHooks, mirror PipelineMirror) Option {
	return func(reg *registry) {
		t := &pipelineTool{reg: reg, candidates: candidates, jobs: jobs, mirror: mirror}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "pipeline_snapshot",
			Description: "Mirror current candidates and jobs into Neo4j and report the most common candidate skills",
		}, t.handle)
	}
}

func (t *pipelineTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params PipelineSnapshotParams) (*sdkmcp.CallToolResult, any, error) {
	ctx, c := t.reg.begin(ctx, "pipeline_snapshot")
	if t.mirror == nil {
		return c.fail(errGraphDisabled), nil, nil
	}

	candidates := t.candidates.Candidates(ctx, domain.CandidateFilters{})
	if candidates.Err != nil {
		return c.fail(candidates.Err), nil, nil
	}
	jobs := t.jobs.Jobs(ctx, domain.JobFilters{})
	if jobs.Err != nil {
		return c.fail(jobs.Err), nil, nil
	}

	if err := t.mirror.UpsertJobs(ctx, jobs.Data); err != nil {
		return c.fail(fmt.Errorf("mirror jobs: %w", err)), nil, nil
	}
	if err := t.mirror.UpsertCandidates(ctx, candidates.Data); err != nil {
		return c.fail(fmt.Errorf("mirror candidates: %w", err)), nil, nil
	}

	skills, err := t.mirror.SkillDemand(ctx, params.Limit)
	if err != nil {
		return c.fail(err), nil, nil
	}

	t.reg.logger.Info("pipeline mirrored", "candidates", len(candidates.Data), "jobs", len(jobs.Data))
	return c.ok(jsonBlock(PipelineSnapshot{
		Candidates: len(candidates.Data),
		Jobs:       len(jobs.Data),
		Skills:     skills,
	})), nil, nil
}
