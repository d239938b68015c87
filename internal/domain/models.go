package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// Resource kinds partition the query cache
const (
	KindCandidates = "candidates"
	KindJobs       = "jobs"
)

// CandidateID identifies a candidate on the backend; zero means "none"
type CandidateID int64

// JobID identifies a job on the backend; zero means "none"
type JobID int64

func (id CandidateID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id JobID) String() string       { return strconv.FormatInt(int64(id), 10) }

// Source is the channel a candidate arrived through
type Source string

const (
	SourceApplied   Source = "applied"
	SourceReferral  Source = "referral"
	SourceLinkedIn  Source = "linkedin"
	SourceCVLibrary Source = "cvlibrary"
	SourceNaukri    Source = "naukri"
)

// DefaultExternalSources are searched when a caller names none
var DefaultExternalSources = []Source{SourceLinkedIn, SourceCVLibrary, SourceNaukri}

// IsExternalBoard reports whether s is a job board rather than a direct channel
func (s Source) IsExternalBoard() bool {
	switch s {
	case SourceLinkedIn, SourceCVLibrary, SourceNaukri:
		return true
	default:
		return false
	}
}

// CandidateStatus is the pipeline stage of a candidate
type CandidateStatus string

const (
	StatusNew                CandidateStatus = "new"
	StatusContacted          CandidateStatus = "contacted"
	StatusInterviewScheduled CandidateStatus = "interview_scheduled"
	StatusHired              CandidateStatus = "hired"
	StatusRejected           CandidateStatus = "rejected"
)

// Label is the dashboard text for a status
func (s CandidateStatus) Label() string {
	switch s {
	case StatusNew:
		return "New"
	case StatusContacted:
		return "Contacted"
	case StatusInterviewScheduled:
		return "Interview Scheduled"
	case StatusHired:
		return "Hired"
	case StatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// JobStatus is the publication state of a job
type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
	JobDraft  JobStatus = "draft"
)

// Skill is a tag attached to a candidate
type Skill struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Candidate is a person moving through the recruitment pipeline
type Candidate struct {
	ID              CandidateID     `json:"id"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone,omitempty"`
	ResumePath      string          `json:"resume_path,omitempty"`
	Source          Source          `json:"source"`
	ExperienceYears float64         `json:"experience_years,omitempty"`
	Education       string          `json:"education,omitempty"`
	Position        string          `json:"current_position,omitempty"`
	Company         string          `json:"current_company,omitempty"`
	MatchScore      float64         `json:"match_score"`
	LLMFeedback     string          `json:"llm_feedback,omitempty"`
	Status          CandidateStatus `json:"status"`
	Skills          []Skill         `json:"skills"`
	CreatedAt       Timestamp       `json:"created_at"`
	UpdatedAt       Timestamp       `json:"updated_at"`
}

// Name is the display name
func (c Candidate) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// SkillNames flattens the skill tags
func (c Candidate) SkillNames() []string {
	out := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		out = append(out, s.Name)
	}
	return out
}

// Job is a posting candidates are matched against
type Job struct {
	ID           JobID     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Location     string    `json:"location,omitempty"`
	JobType      string    `json:"job_type"`
	Status       JobStatus `json:"status,omitempty"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`
}

// IsOpen treats a missing status as open; the backend omits it for live postings
func (j Job) IsOpen() bool {
	return j.Status == "" || j.Status == JobOpen
}

// CandidateFilters narrows the candidate collection
type CandidateFilters struct {
	Skip   int
	Limit  int
	Source Source
	Status CandidateStatus
}

// Values encodes the filters as query parameters, omitting zero values
func (f CandidateFilters) Values() url.Values {
	v := url.Values{}
	if f.Skip > 0 {
		v.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Source != "" {
		v.Set("source", string(f.Source))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	return v
}

// JobFilters narrows the job collection
type JobFilters struct {
	Skip   int
	Limit  int
	Status JobStatus
}

func (f JobFilters) Values() url.Values {
	v := url.Values{}
	if f.Skip > 0 {
		v.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	return v
}

// JobInput is the body of a create-job call
type JobInput struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Location     string    `json:"location,omitempty"`
	JobType      string    `json:"job_type"`
	Status       JobStatus `json:"status,omitempty"`
}

// JobPatch is a partial update; nil fields are left untouched
type JobPatch struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Requirements *string    `json:"requirements,omitempty"`
	Location     *string    `json:"location,omitempty"`
	JobType      *string    `json:"job_type,omitempty"`
	Status       *JobStatus `json:"status,omitempty"`
}

// Ack is the generic acknowledgement returned by action endpoints
type Ack struct {
	Message string `json:"message"`
	JobID   JobID  `json:"job_id,omitempty"`
}

// SkillDemand counts candidates holding a skill across the mirrored pipeline
type SkillDemand struct {
	Skill      string `json:"skill"`
	Candidates int64  `json:"candidates"`
	Hired      int64  `json:"hired"`
}
