package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/honeycarbs/hirepipe/internal/domain"
	"github.com/honeycarbs/hirepipe/pkg/api"
)

// JobService covers the /jobs and /search endpoints
type JobService struct {
	client Sender
}

// NewJobService builds a JobService
func NewJobService(client Sender) (*JobService, error) {
	if client == nil {
		return nil, fmt.Errorf("job service: client is required")
	}
	return &JobService{client: client}, nil
}

func (s *JobService) List(ctx context.Context, filters domain.JobFilters) ([]domain.Job, error) {
	var out []domain.Job
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/jobs/",
		Query:  filters.Values(),
	}, &out)
	return out, err
}

func (s *JobService) Get(ctx context.Context, id domain.JobID) (domain.Job, error) {
	var out domain.Job
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/jobs/" + id.String(),
	}, &out)
	return out, err
}

func (s *JobService) Create(ctx context.Context, in domain.JobInput) (domain.Job, error) {
	var out domain.Job
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/jobs/",
		Body:   in,
	}, &out)
	return out, err
}

func (s *JobService) Update(ctx context.Context, id domain.JobID, patch domain.JobPatch) (domain.Job, error) {
	var out domain.Job
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodPatch,
		Path:   "/jobs/" + id.String(),
		Body:   patch,
	}, &out)
	return out, err
}

// SearchExternalCandidates starts a board search for jobID. With no sources
// the default boards are searched.
func (s *JobService) SearchExternalCandidates(ctx context.Context, jobID domain.JobID, sources ...domain.Source) (domain.Ack, error) {
	if len(sources) == 0 {
		sources = domain.DefaultExternalSources
	}
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, string(src))
	}

	query := url.Values{}
	query.Set("job_id", jobID.String())
	query.Set("sources", strings.Join(names, ","))

	var out domain.Ack
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/search/external/",
		Query:  query,
	}, &out)
	return out, err
}
