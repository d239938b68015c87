package hooks

import (
	"context"

	"github.com/honeycarbs/hirepipe/internal/domain"
	"github.com/honeycarbs/hirepipe/internal/query"
	"github.com/honeycarbs/hirepipe/internal/service"
)

var (
	uploadCandidate = mutation{
		name:    "upload_candidate",
		kind:    domain.KindCandidates,
		success: "Candidate uploaded successfully",
		failure: "Failed to upload candidate",
	}
	contactCandidate = mutation{
		name:    "contact_candidate",
		kind:    domain.KindCandidates,
		success: "Email sent to candidate",
		failure: "Failed to contact candidate",
	}
	scheduleInterview = mutation{
		name:    "schedule_interview",
		kind:    domain.KindCandidates,
		success: "Interview scheduled successfully",
		failure: "Failed to schedule interview",
	}
)

// Candidates reads a filtered candidate page through the cache
func (h *Hooks) Candidates(ctx context.Context, filters domain.CandidateFilters) query.Result[[]domain.Candidate] {
	key := query.ListKey(domain.KindCandidates, filters.Values())
	return query.Fetch(ctx, h.store, key, func(ctx context.Context) ([]domain.Candidate, error) {
		return h.candidates.List(ctx, filters)
	})
}

// Candidate reads one candidate; a zero id is skipped
func (h *Hooks) Candidate(ctx context.Context, id domain.CandidateID) query.Result[domain.Candidate] {
	if id == 0 {
		return query.Idle[domain.Candidate]()
	}
	key := query.ItemKey(domain.KindCandidates, id.String())
	return query.Fetch(ctx, h.store, key, func(ctx context.Context) (domain.Candidate, error) {
		return h.candidates.Get(ctx, id)
	})
}

// CandidateListView returns a per-consumer candidate list view
func (h *Hooks) CandidateListView() *ListView[domain.CandidateFilters, domain.Candidate] {
	return &ListView[domain.CandidateFilters, domain.Candidate]{
		kind: domain.KindCandidates,
		obs:  query.NewObserver[[]domain.Candidate](h.store),
		load: h.candidates.List,
	}
}

func (h *Hooks) UploadCandidate(ctx context.Context, in service.CandidateUpload) (domain.Candidate, error) {
	return mutate(ctx, h, uploadCandidate, func(ctx context.Context) (domain.Candidate, error) {
		return h.candidates.Upload(ctx, in)
	})
}

// ContactCandidate sends an interview invitation; jobID may be zero
func (h *Hooks) ContactCandidate(ctx context.Context, id domain.CandidateID, jobID domain.JobID) (domain.Ack, error) {
	return mutate(ctx, h, contactCandidate, func(ctx context.Context) (domain.Ack, error) {
		return h.candidates.Contact(ctx, id, jobID)
	})
}

func (h *Hooks) ScheduleInterview(ctx context.Context, id domain.CandidateID, in service.Interview) (domain.Ack, error) {
	return mutate(ctx, h, scheduleInterview, func(ctx context.Context) (domain.Ack, error) {
		return h.candidates.ScheduleInterview(ctx, id, in)
	})
}
