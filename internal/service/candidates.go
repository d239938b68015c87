// Package service maps recruitment operations onto backend REST calls.
package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/honeycarbs/hirepipe/internal/domain"
	"github.com/honeycarbs/hirepipe/pkg/api"
)

// Sender is the subset of the api client used by services
type Sender interface {
	Do(ctx context.Context, req api.Request, out any) error
}

// CandidateService covers the /candidates endpoints
type CandidateService struct {
	client Sender
}

// NewCandidateService builds a CandidateService
func NewCandidateService(client Sender) (*CandidateService, error) {
	if client == nil {
		return nil, fmt.Errorf("candidate service: client is required")
	}
	return &CandidateService{client: client}, nil
}

// CandidateUpload is the multipart payload for a new candidate
type CandidateUpload struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	ResumeName string
	Resume     io.Reader
}

// Interview is what schedule needs; JobID is optional
type Interview struct {
	DateTime time.Time
	JobID    domain.JobID
}

// DateTimeLayout is the wall-clock format the schedule endpoint expects
const DateTimeLayout = "2006-01-02T15:04"

func (s *CandidateService) List(ctx context.Context, filters domain.CandidateFilters) ([]domain.Candidate, error) {
	var out []domain.Candidate
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/candidates/",
		Query:  filters.Values(),
	}, &out)
	return out, err
}

func (s *CandidateService) Get(ctx context.Context, id domain.CandidateID) (domain.Candidate, error) {
	var out domain.Candidate
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/candidates/" + id.String(),
	}, &out)
	return out, err
}

func (s *CandidateService) Upload(ctx context.Context, in CandidateUpload) (domain.Candidate, error) {
	if in.Resume == nil {
		return domain.Candidate{}, fmt.Errorf("candidate service: resume is required")
	}

	form := (&api.Form{}).
		Add("first_name", in.FirstName).
		Add("last_name", in.LastName).
		Add("email", in.Email)
	if in.Phone != "" {
		form.Add("phone", in.Phone)
	}
	name := in.ResumeName
	if name == "" {
		name = "resume"
	}
	form.AddFile("resume", name, in.Resume)

	var out domain.Candidate
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/candidates/",
		Form:   form,
	}, &out)
	return out, err
}

// Contact emails an interview invitation; jobID is optional
func (s *CandidateService) Contact(ctx context.Context, id domain.CandidateID, jobID domain.JobID) (domain.Ack, error) {
	query := url.Values{}
	if jobID != 0 {
		query.Set("job_id", jobID.String())
	}

	var out domain.Ack
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/candidates/" + id.String() + "/contact",
		Query:  query,
		Body:   struct{}{},
	}, &out)
	return out, err
}

func (s *CandidateService) ScheduleInterview(ctx context.Context, id domain.CandidateID, in Interview) (domain.Ack, error) {
	if in.DateTime.IsZero() {
		return domain.Ack{}, fmt.Errorf("candidate service: interview date_time is required")
	}

	form := (&api.Form{}).Add("date_time", in.DateTime.Format(DateTimeLayout))
	if in.JobID != 0 {
		form.Add("job_id", in.JobID.String())
	}

	var out domain.Ack
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/candidates/" + id.String() + "/schedule",
		Form:   form,
	}, &out)
	return out, err
}
