package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/hirepipe/internal/domain"
	pkgneo4j "github.com/honeycarbs/hirepipe/pkg/neo4j"
)

// PipelineRepository mirrors candidates and jobs into a graph for skill analytics
type PipelineRepository struct {
	client *pkgneo4j.Client
}

func NewPipelineRepository(client *pkgneo4j.Client) *PipelineRepository {
	return &PipelineRepository{client: client}
}

// UpsertCandidates merges candidates with their skills and source
func (r *PipelineRepository) UpsertCandidates(ctx context.Context, candidates []domain.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	query := `
		UNWIND $candidates AS cand
		MERGE (c:Candidate {id: cand.id})
		SET c.name = cand.name,
		    c.email = cand.email,
		    c.status = cand.status,
		    c.matchScore = cand.matchScore,
		    c.experienceYears = cand.experienceYears,
		    c.createdAt = cand.createdAt
		WITH c, cand
		MERGE (src:Source {name: cand.source})
		MERGE (c)-[:SOURCED_FROM]->(src)
		WITH c, cand
		OPTIONAL MATCH (c)-[old:HAS_SKILL]->(:Skill)
		DELETE old
		WITH DISTINCT c, cand
		FOREACH (skill IN cand.skills |
			MERGE (s:Skill {name: skill})
			MERGE (c)-[:HAS_SKILL]->(s)
		)
	`

	rows := make([]map[string]any, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, map[string]any{
			"id":              int64(c.ID),
			"name":            c.Name(),
			"email":           c.Email,
			"status":          string(c.Status),
			"source":          string(c.Source),
			"matchScore":      c.MatchScore,
			"experienceYears": c.ExperienceYears,
			"createdAt":       c.CreatedAt.UnixMilli(),
			"skills":          c.SkillNames(),
		})
	}

	return r.write(ctx, query, map[string]any{"candidates": rows})
}

// UpsertJobs merges job postings by backend id
func (r *PipelineRepository) UpsertJobs(ctx context.Context, jobs []domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	query := `
		UNWIND $jobs AS job
		MERGE (j:Job {id: job.id})
		SET j.title = job.title,
		    j.location = job.location,
		    j.jobType = job.jobType,
		    j.open = job.open
	`

	rows := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, map[string]any{
			"id":       int64(j.ID),
			"title":    j.Title,
			"location": j.Location,
			"jobType":  j.JobType,
			"open":     j.IsOpen(),
		})
	}

	return r.write(ctx, query, map[string]any{"jobs": rows})
}

// SkillDemand returns the most common candidate skills, most frequent first
func (r *PipelineRepository) SkillDemand(ctx context.Context, limit int) ([]domain.SkillDemand, error) {
	if limit <= 0 {
		limit = 10
	}

	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (c:Candidate)-[:HAS_SKILL]->(s:Skill)
		RETURN s.name AS skill,
		       count(c) AS candidates,
		       sum(CASE WHEN c.status = 'hired' THEN 1 ELSE 0 END) AS hired
		ORDER BY candidates DESC, skill ASC
		LIMIT $limit
	`

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{"limit": int64(limit)})
		if err != nil {
			return nil, err
		}

		var demand []domain.SkillDemand
		for result.Next(ctx) {
			rec := result.Record()
			skill, _, err := neo4j.GetRecordValue[string](rec, "skill")
			if err != nil {
				return nil, err
			}
			candidates, _, err := neo4j.GetRecordValue[int64](rec, "candidates")
			if err != nil {
				return nil, err
			}
			hired, _, err := neo4j.GetRecordValue[int64](rec, "hired")
			if err != nil {
				return nil, err
			}
			demand = append(demand, domain.SkillDemand{Skill: skill, Candidates: candidates, Hired: hired})
		}
		return demand, result.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: skill demand: %w", err)
	}

	demand, _ := out.([]domain.SkillDemand)
	return demand, nil
}

func (r *PipelineRepository) write(ctx context.Context, query string, params map[string]any) error {
	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j: write: %w", err)
	}
	return nil
}
