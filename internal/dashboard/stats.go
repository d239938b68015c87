// Package dashboard summarizes the recruitment pipeline from cached reads.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/honeycarbs/hirepipe/internal/domain"
	"github.com/honeycarbs/hirepipe/internal/query"
	"github.com/honeycarbs/hirepipe/pkg/logging"
)

const DefaultRecent = 4

// Band is a coarse label for a match score
type Band string

const (
	BandExcellent Band = "excellent"
	BandStrong    Band = "strong"
	BandFair      Band = "fair"
	BandLow       Band = "low"
)

func MatchBand(score float64) Band {
	switch {
	case score >= 90:
		return BandExcellent
	case score >= 80:
		return BandStrong
	case score >= 70:
		return BandFair
	default:
		return BandLow
	}
}

type RecentCandidate struct {
	ID         domain.CandidateID `json:"id"`
	Name       string             `json:"name"`
	Position   string             `json:"position,omitempty"`
	Source     domain.Source      `json:"source"`
	MatchScore float64            `json:"match_score"`
	Band       Band               `json:"band"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Stats is the dashboard overview
type Stats struct {
	TotalCandidates   int               `json:"total_candidates"`
	OpenJobs          int               `json:"open_jobs"`
	PendingInterviews int               `json:"pending_interviews"`
	Hired             int               `json:"hired"`
	Recent            []RecentCandidate `json:"recent_candidates"`
}

// Compute derives Stats from candidate and job lists; recent caps the recent list
func Compute(candidates []domain.Candidate, jobs []domain.Job, recent int) Stats {
	st := Stats{TotalCandidates: len(candidates)}

	for _, j := range jobs {
		if j.IsOpen() {
			st.OpenJobs++
		}
	}
	for _, c := range candidates {
		switch c.Status {
		case domain.StatusInterviewScheduled:
			st.PendingInterviews++
		case domain.StatusHired:
			st.Hired++
		}
	}

	sorted := make([]domain.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, k int) bool {
		return sorted[i].CreatedAt.After(sorted[k].CreatedAt.Time)
	})
	if recent > len(sorted) {
		recent = len(sorted)
	}

	st.Recent = make([]RecentCandidate, 0, recent)
	for _, c := range sorted[:recent] {
		st.Recent = append(st.Recent, RecentCandidate{
			ID:         c.ID,
			Name:       c.Name(),
			Position:   c.Position,
			Source:     c.Source,
			MatchScore: c.MatchScore,
			Band:       MatchBand(c.MatchScore),
			CreatedAt:  c.CreatedAt.Time,
		})
	}

	return st
}

// Reader is the slice of the hooks layer the dashboard needs
type Reader interface {
	Candidates(ctx context.Context, filters domain.CandidateFilters) query.Result[[]domain.Candidate]
	Jobs(ctx context.Context, filters domain.JobFilters) query.Result[[]domain.Job]
}

type Service struct {
	reader Reader
	recent int
	logger *logging.Logger
}

func NewService(reader Reader, logger *logging.Logger) (*Service, error) {
	if reader == nil {
		return nil, fmt.Errorf("dashboard: reader is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{reader: reader, recent: DefaultRecent, logger: logger.Named("dashboard")}, nil
}

// Stats reads the unfiltered lists through the cache and summarizes them
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	candidates := s.reader.Candidates(ctx, domain.CandidateFilters{})
	if candidates.Err != nil {
		return Stats{}, fmt.Errorf("dashboard: candidates: %w", candidates.Err)
	}
	jobs := s.reader.Jobs(ctx, domain.JobFilters{})
	if jobs.Err != nil {
		return Stats{}, fmt.Errorf("dashboard: jobs: %w", jobs.Err)
	}

	st := Compute(candidates.Data, jobs.Data, s.recent)
	s.logger.Debug("stats computed",
		"candidates", st.TotalCandidates,
		"open_jobs", st.OpenJobs,
		"stale", candidates.IsStale || jobs.IsStale,
	)
	return st, nil
}
