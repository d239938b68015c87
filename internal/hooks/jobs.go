package hooks

import (
	"context"

	"github.com/honeycarbs/hirepipe/internal/domain"
	"github.com/honeycarbs/hirepipe/internal/query"
)

var (
	createJob = mutation{
		name:    "create_job",
		kind:    domain.KindJobs,
		success: "Job created successfully",
		failure: "Failed to create job",
	}
	updateJob = mutation{
		name:    "update_job",
		kind:    domain.KindJobs,
		success: "Job updated successfully",
		failure: "Failed to update job",
	}
	// found candidates are added by the backend, so candidate reads go stale
	searchExternal = mutation{
		name:    "search_external_candidates",
		kind:    domain.KindCandidates,
		success: "External candidate search initiated",
		failure: "Failed to start external candidate search",
	}
)

func (h *Hooks) Jobs(ctx context.Context, filters domain.JobFilters) query.Result[[]domain.Job] {
	key := query.ListKey(domain.KindJobs, filters.Values())
	return query.Fetch(ctx, h.store, key, func(ctx context.Context) ([]domain.Job, error) {
		return h.jobs.List(ctx, filters)
	})
}

// Job reads one job; a zero id is skipped
func (h *Hooks) Job(ctx context.Context, id domain.JobID) query.Result[domain.Job] {
	if id == 0 {
		return query.Idle[domain.Job]()
	}
	key := query.ItemKey(domain.KindJobs, id.String())
	return query.Fetch(ctx, h.store, key, func(ctx context.Context) (domain.Job, error) {
		return h.jobs.Get(ctx, id)
	})
}

// JobListView returns a per-consumer job list view
func (h *Hooks) JobListView() *ListView[domain.JobFilters, domain.Job] {
	return &ListView[domain.JobFilters, domain.Job]{
		kind: domain.KindJobs,
		obs:  query.NewObserver[[]domain.Job](h.store),
		load: h.jobs.List,
	}
}

func (h *Hooks) CreateJob(ctx context.Context, in domain.JobInput) (domain.Job, error) {
	return mutate(ctx, h, createJob, func(ctx context.Context) (domain.Job, error) {
		return h.jobs.Create(ctx, in)
	})
}

func (h *Hooks) UpdateJob(ctx context.Context, id domain.JobID, patch domain.JobPatch) (domain.Job, error) {
	return mutate(ctx, h, updateJob, func(ctx context.Context) (domain.Job, error) {
		return h.jobs.Update(ctx, id, patch)
	})
}

func (h *Hooks) SearchExternalCandidates(ctx context.Context, jobID domain.JobID, sources ...domain.Source) (domain.Ack, error) {
	return mutate(ctx, h, searchExternal, func(ctx context.Context) (domain.Ack, error) {
		return h.jobs.SearchExternalCandidates(ctx, jobID, sources...)
	})
}
