// Package hooks is the only layer that reads through and mutates the query cache.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/honeycarbs/hirepipe/internal/domain"
	"github.com/honeycarbs/hirepipe/internal/notify"
	"github.com/honeycarbs/hirepipe/internal/query"
	"github.com/honeycarbs/hirepipe/internal/service"
	"github.com/honeycarbs/hirepipe/pkg/api"
	"github.com/honeycarbs/hirepipe/pkg/logging"
)

// CandidateAPI is the candidate resource service
type CandidateAPI interface {
	List(ctx context.Context, filters domain.CandidateFilters) ([]domain.Candidate, error)
	Get(ctx context.Context, id domain.CandidateID) (domain.Candidate, error)
	Upload(ctx context.Context, in service.CandidateUpload) (domain.Candidate, error)
	Contact(ctx context.Context, id domain.CandidateID, jobID domain.JobID) (domain.Ack, error)
	ScheduleInterview(ctx context.Context, id domain.CandidateID, in service.Interview) (domain.Ack, error)
}

// JobAPI is the job resource service
type JobAPI interface {
	List(ctx context.Context, filters domain.JobFilters) ([]domain.Job, error)
	Get(ctx context.Context, id domain.JobID) (domain.Job, error)
	Create(ctx context.Context, in domain.JobInput) (domain.Job, error)
	Update(ctx context.Context, id domain.JobID, patch domain.JobPatch) (domain.Job, error)
	SearchExternalCandidates(ctx context.Context, jobID domain.JobID, sources ...domain.Source) (domain.Ack, error)
}

// Hooks exposes cached reads and invalidating writes
type Hooks struct {
	store      *query.Store
	candidates CandidateAPI
	jobs       JobAPI
	notifier   notify.Notifier
	logger     *logging.Logger
}

// New wires the hooks layer; every collaborator is required
func New(store *query.Store, candidates CandidateAPI, jobs JobAPI, notifier notify.Notifier, logger *logging.Logger) (*Hooks, error) {
	switch {
	case store == nil:
		return nil, fmt.Errorf("hooks: query store is required")
	case candidates == nil:
		return nil, fmt.Errorf("hooks: candidate service is required")
	case jobs == nil:
		return nil, fmt.Errorf("hooks: job service is required")
	case notifier == nil:
		return nil, fmt.Errorf("hooks: notifier is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Hooks{
		store:      store,
		candidates: candidates,
		jobs:       jobs,
		notifier:   notifier,
		logger:     logger.Named("hooks"),
	}, nil
}

// mutation names what a write invalidates and what the user is told
type mutation struct {
	name    string
	kind    string
	success string
	failure string
}

func mutate[T any](ctx context.Context, h *Hooks, m mutation, write func(context.Context) (T, error)) (T, error) {
	out, err := write(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return out, err
		}
		msg := api.DetailMessage(err)
		if msg == "" {
			msg = m.failure
		}
		h.notifier.Error(ctx, msg)
		h.logger.Warn("mutation failed", "mutation", m.name, "err", err)
		return out, err
	}

	n := h.store.Invalidate(m.kind)
	h.notifier.Success(ctx, m.success)
	h.logger.Debug("mutation succeeded", "mutation", m.name, "invalidated", n)
	return out, nil
}

type filterValues interface {
	Values() url.Values
}

// ListView is a list read that keeps showing the last page while new filters load
type ListView[F filterValues, T any] struct {
	kind string
	obs  *query.Observer[[]T]
	load func(ctx context.Context, filters F) ([]T, error)
}

// Observe returns the current page for filters without blocking
func (v *ListView[F, T]) Observe(ctx context.Context, filters F) query.Result[[]T] {
	return v.obs.Observe(ctx, query.ListKey(v.kind, filters.Values()), v.fetcher(filters))
}

// Refresh waits for a new page for filters
func (v *ListView[F, T]) Refresh(ctx context.Context, filters F) query.Result[[]T] {
	return v.obs.Refresh(ctx, query.ListKey(v.kind, filters.Values()), v.fetcher(filters))
}

// Read is Observe for a consumer that cannot redraw when a fetch lands. With
// nothing to show yet, or after a failure, it waits for the request instead.
func (v *ListView[F, T]) Read(ctx context.Context, filters F) query.Result[[]T] {
	r := v.Observe(ctx, filters)
	switch {
	case r.Status == query.StatusError:
		return v.Refresh(ctx, filters)
	case r.Status == query.StatusLoading && !r.IsPreviousData:
		return v.Refresh(ctx, filters)
	}
	return r
}

func (v *ListView[F, T]) fetcher(filters F) query.Fetcher[[]T] {
	return func(ctx context.Context) ([]T, error) {
		return v.load(ctx, filters)
	}
}
