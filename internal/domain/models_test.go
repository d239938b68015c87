package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampDecodesBackendFormats(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2024-08-15T11:30:00"`, time.Date(2024, 8, 15, 11, 30, 0, 0, time.UTC)},
		{`"2024-08-15T11:30:00.250000"`, time.Date(2024, 8, 15, 11, 30, 0, 250_000_000, time.UTC)},
		{`"2024-08-15T11:30:00+02:00"`, time.Date(2024, 8, 15, 9, 30, 0, 0, time.UTC)},
		{`"2024-08-15T11:30:00Z"`, time.Date(2024, 8, 15, 11, 30, 0, 0, time.UTC)},
		{`null`, time.Time{}},
	}

	for _, tt := range tests {
		var ts Timestamp
		if err := json.Unmarshal([]byte(tt.in), &ts); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if !ts.Equal(tt.want) {
			t.Fatalf("Unmarshal(%s) = %v, want %v", tt.in, ts.Time, tt.want)
		}
	}
}

func TestCandidateDecodesBackendPayload(t *testing.T) {
	payload := `{
		"id": 3,
		"first_name": "Priya",
		"last_name": "Patel",
		"email": "priya@example.com",
		"source": "naukri",
		"experience_years": 4.5,
		"current_position": "Full Stack Developer",
		"match_score": 81,
		"status": "interview_scheduled",
		"skills": [{"id": 1, "name": "go"}, {"id": 2, "name": "react", "category": "frontend"}],
		"created_at": "2024-08-01T09:00:00.000001",
		"updated_at": null
	}`

	var c Candidate
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if c.Name() != "Priya Patel" {
		t.Fatalf("name = %q", c.Name())
	}
	if !c.Source.IsExternalBoard() {
		t.Fatal("naukri should be an external board")
	}
	if c.Status != StatusInterviewScheduled || c.Status.Label() != "Interview Scheduled" {
		t.Fatalf("status = %q", c.Status)
	}
	if got := c.SkillNames(); len(got) != 2 || got[1] != "react" {
		t.Fatalf("skills = %v", got)
	}
	if c.CreatedAt.IsZero() || !c.UpdatedAt.IsZero() {
		t.Fatalf("created=%v updated=%v", c.CreatedAt, c.UpdatedAt)
	}
}

func TestFilterValuesOmitZeroFields(t *testing.T) {
	if got := (CandidateFilters{}).Values().Encode(); got != "" {
		t.Fatalf("empty filters encoded as %q", got)
	}

	got := CandidateFilters{Limit: 20, Status: StatusNew, Source: SourceReferral}.Values().Encode()
	if got != "limit=20&source=referral&status=new" {
		t.Fatalf("encoded = %q", got)
	}

	if got := (JobFilters{Status: JobDraft}).Values().Encode(); got != "status=draft" {
		t.Fatalf("job filters encoded as %q", got)
	}
}

func TestJobIsOpen(t *testing.T) {
	if !(Job{}).IsOpen() || !(Job{Status: JobOpen}).IsOpen() {
		t.Fatal("blank and open jobs should count as open")
	}
	if (Job{Status: JobClosed}).IsOpen() || (Job{Status: JobDraft}).IsOpen() {
		t.Fatal("closed and draft jobs should not count as open")
	}
}
