package hooks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/honeycarbs/hirepipe/internal/domain"
	"github.com/honeycarbs/hirepipe/internal/notify"
	"github.com/honeycarbs/hirepipe/internal/query"
	"github.com/honeycarbs/hirepipe/internal/service"
	"github.com/honeycarbs/hirepipe/pkg/api"
)

type fakeCandidates struct {
	listCalls atomic.Int32
	getCalls  atomic.Int32

	mu       sync.Mutex
	byStatus map[domain.CandidateStatus][]domain.Candidate
	writeErr error
}

func (f *fakeCandidates) List(_ context.Context, filters domain.CandidateFilters) ([]domain.Candidate, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byStatus[filters.Status], nil
}

func (f *fakeCandidates) Get(_ context.Context, id domain.CandidateID) (domain.Candidate, error) {
	f.getCalls.Add(1)
	return domain.Candidate{ID: id, FirstName: "Ada"}, nil
}

func (f *fakeCandidates) Upload(_ context.Context, in service.CandidateUpload) (domain.Candidate, error) {
	if f.writeErr != nil {
		return domain.Candidate{}, f.writeErr
	}
	return domain.Candidate{ID: 9, FirstName: in.FirstName}, nil
}

func (f *fakeCandidates) Contact(_ context.Context, id domain.CandidateID, _ domain.JobID) (domain.Ack, error) {
	if f.writeErr != nil {
		return domain.Ack{}, f.writeErr
	}
	return domain.Ack{Message: "sent"}, nil
}

func (f *fakeCandidates) ScheduleInterview(_ context.Context, id domain.CandidateID, _ service.Interview) (domain.Ack, error) {
	if f.writeErr != nil {
		return domain.Ack{}, f.writeErr
	}
	return domain.Ack{Message: "scheduled"}, nil
}

type fakeJobs struct {
	listCalls atomic.Int32
	getCalls  atomic.Int32
	writeErr  error

	// closedGate holds listing of closed jobs until it is closed
	closedGate chan struct{}
}

func (f *fakeJobs) List(_ context.Context, filters domain.JobFilters) ([]domain.Job, error) {
	f.listCalls.Add(1)
	if filters.Status == domain.JobClosed {
		if f.closedGate != nil {
			<-f.closedGate
		}
		return []domain.Job{{ID: 9, Title: "Archived", Status: domain.JobClosed}}, nil
	}
	return []domain.Job{{ID: 1, Title: "Go Engineer"}}, nil
}

func (f *fakeJobs) Get(_ context.Context, id domain.JobID) (domain.Job, error) {
	f.getCalls.Add(1)
	return domain.Job{ID: id}, nil
}

func (f *fakeJobs) Create(_ context.Context, in domain.JobInput) (domain.Job, error) {
	if f.writeErr != nil {
		return domain.Job{}, f.writeErr
	}
	return domain.Job{ID: 2, Title: in.Title}, nil
}

func (f *fakeJobs) Update(_ context.Context, id domain.JobID, _ domain.JobPatch) (domain.Job, error) {
	if f.writeErr != nil {
		return domain.Job{}, f.writeErr
	}
	return domain.Job{ID: id}, nil
}

func (f *fakeJobs) SearchExternalCandidates(_ context.Context, jobID domain.JobID, _ ...domain.Source) (domain.Ack, error) {
	if f.writeErr != nil {
		return domain.Ack{}, f.writeErr
	}
	return domain.Ack{Message: "started", JobID: jobID}, nil
}

type recorded struct {
	level notify.Level
	msg   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	seen []recorded
}

func (n *recordingNotifier) Success(_ context.Context, msg string) {
	n.mu.Lock()
	n.seen = append(n.seen, recorded{notify.LevelSuccess, msg})
	n.mu.Unlock()
}

func (n *recordingNotifier) Error(_ context.Context, msg string) {
	n.mu.Lock()
	n.seen = append(n.seen, recorded{notify.LevelError, msg})
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []recorded {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recorded(nil), n.seen...)
}

type fixture struct {
	store      *query.Store
	candidates *fakeCandidates
	jobs       *fakeJobs
	notes      *recordingNotifier
	hooks      *Hooks
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: query.NewStore(),
		candidates: &fakeCandidates{byStatus: map[domain.CandidateStatus][]domain.Candidate{
			domain.StatusNew:       {{ID: 1, FirstName: "Ada"}, {ID: 2, FirstName: "Grace"}},
			domain.StatusContacted: {{ID: 3, FirstName: "Linus"}},
		}},
		jobs:  &fakeJobs{},
		notes: &recordingNotifier{},
	}
	t.Cleanup(f.store.Close)

	h, err := New(f.store, f.candidates, f.jobs, f.notes, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.hooks = h
	return f
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(nil, &fakeCandidates{}, &fakeJobs{}, &recordingNotifier{}, nil); err == nil {
		t.Fatal("expected error without store")
	}
	s := query.NewStore()
	defer s.Close()
	if _, err := New(s, &fakeCandidates{}, &fakeJobs{}, nil, nil); err == nil {
		t.Fatal("expected error without notifier")
	}
}

func TestReadsAreCachedPerFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	newOnes := f.hooks.Candidates(ctx, domain.CandidateFilters{Status: domain.StatusNew})
	if !newOnes.OK() || len(newOnes.Data) != 2 {
		t.Fatalf("new = %+v", newOnes)
	}
	f.hooks.Candidates(ctx, domain.CandidateFilters{Status: domain.StatusNew})
	contacted := f.hooks.Candidates(ctx, domain.CandidateFilters{Status: domain.StatusContacted})
	if len(contacted.Data) != 1 {
		t.Fatalf("contacted = %+v", contacted)
	}

	if got := f.candidates.listCalls.Load(); got != 2 {
		t.Fatalf("list calls = %d, want 2", got)
	}
}

func TestZeroIDReadIsSkipped(t *testing.T) {
	f := newFixture(t)

	c := f.hooks.Candidate(context.Background(), 0)
	if c.Status != query.StatusIdle {
		t.Fatalf("candidate status = %v, want idle", c.Status)
	}
	j := f.hooks.Job(context.Background(), 0)
	if j.Status != query.StatusIdle {
		t.Fatalf("job status = %v, want idle", j.Status)
	}

	if f.candidates.getCalls.Load() != 0 || f.jobs.getCalls.Load() != 0 {
		t.Fatal("skipped read reached the service")
	}
	if len(f.store.Keys(domain.KindCandidates)) != 0 || len(f.store.Keys(domain.KindJobs)) != 0 {
		t.Fatal("skipped read created a cache entry")
	}
}

func TestWriteInvalidatesOnlyItsKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.hooks.Candidates(ctx, domain.CandidateFilters{Status: domain.StatusNew})
	f.hooks.Candidate(ctx, 1)
	f.hooks.Jobs(ctx, domain.JobFilters{})

	if _, err := f.hooks.ContactCandidate(ctx, 1, 0); err != nil {
		t.Fatalf("ContactCandidate: %v", err)
	}

	for _, key := range f.store.Keys(domain.KindCandidates) {
		if e, _ := f.store.Get(key); !e.Invalidated {
			t.Fatalf("%s still valid after write", key)
		}
	}
	for _, key := range f.store.Keys(domain.KindJobs) {
		if e, _ := f.store.Get(key); e.Invalidated {
			t.Fatalf("%s invalidated by candidate write", key)
		}
	}

	f.hooks.Candidates(ctx, domain.CandidateFilters{Status: domain.StatusNew})
	f.hooks.Jobs(ctx, domain.JobFilters{})
	if got := f.candidates.listCalls.Load(); got != 2 {
		t.Fatalf("candidate list calls = %d, want 2", got)
	}
	if got := f.jobs.listCalls.Load(); got != 1 {
		t.Fatalf("job list calls = %d, want 1", got)
	}

	seen := f.notes.all()
	if len(seen) != 1 || seen[0] != (recorded{notify.LevelSuccess, "Email sent to candidate"}) {
		t.Fatalf("notifications = %+v", seen)
	}
}

func TestExternalSearchInvalidatesCandidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.hooks.Candidates(ctx, domain.CandidateFilters{})
	f.hooks.Jobs(ctx, domain.JobFilters{})

	ack, err := f.hooks.SearchExternalCandidates(ctx, 4)
	if err != nil || ack.JobID != 4 {
		t.Fatalf("ack=%+v err=%v", ack, err)
	}

	for _, key := range f.store.Keys(domain.KindCandidates) {
		if e, _ := f.store.Get(key); !e.Invalidated {
			t.Fatalf("%s still valid", key)
		}
	}
	for _, key := range f.store.Keys(domain.KindJobs) {
		if e, _ := f.store.Get(key); e.Invalidated {
			t.Fatalf("%s invalidated", key)
		}
	}
}

func TestFailedWriteNotifiesAndKeepsCache(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "backend detail",
			err:  &api.Error{Kind: api.KindClient, StatusCode: 400, Messages: []string{"Job title already exists"}},
			want: "Job title already exists",
		},
		{
			name: "no detail",
			err:  errors.New("boom"),
			want: "Failed to create job",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.hooks.Jobs(ctx, domain.JobFilters{})
			f.jobs.writeErr = tc.err

			_, err := f.hooks.CreateJob(ctx, domain.JobInput{Title: "Go Engineer"})
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v", err)
			}

			for _, key := range f.store.Keys(domain.KindJobs) {
				if e, _ := f.store.Get(key); e.Invalidated {
					t.Fatalf("%s invalidated by failed write", key)
				}
			}
			seen := f.notes.all()
			if len(seen) != 1 || seen[0] != (recorded{notify.LevelError, tc.want}) {
				t.Fatalf("notifications = %+v", seen)
			}
		})
	}
}

func TestCancelledWriteIsSilent(t *testing.T) {
	f := newFixture(t)
	f.candidates.writeErr = context.Canceled

	_, err := f.hooks.ScheduleInterview(context.Background(), 1, service.Interview{DateTime: time.Now()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if seen := f.notes.all(); len(seen) != 0 {
		t.Fatalf("notifications = %+v", seen)
	}
}

func TestMutationMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.hooks.UploadCandidate(ctx, service.CandidateUpload{FirstName: "Ada", Resume: strings.NewReader("cv")})
	_, _ = f.hooks.ScheduleInterview(ctx, 1, service.Interview{DateTime: time.Now()})
	_, _ = f.hooks.UpdateJob(ctx, 1, domain.JobPatch{})
	_, _ = f.hooks.SearchExternalCandidates(ctx, 1)

	want := []string{
		"Candidate uploaded successfully",
		"Interview scheduled successfully",
		"Job updated successfully",
		"External candidate search initiated",
	}
	seen := f.notes.all()
	if len(seen) != len(want) {
		t.Fatalf("notifications = %+v", seen)
	}
	for i, w := range want {
		if seen[i].msg != w || seen[i].level != notify.LevelSuccess {
			t.Fatalf("notification %d = %+v, want %q", i, seen[i], w)
		}
	}
}

func TestListViewKeepsPreviousPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view := f.hooks.CandidateListView()
	first := view.Refresh(ctx, domain.CandidateFilters{Status: domain.StatusNew})
	if !first.OK() || len(first.Data) != 2 {
		t.Fatalf("first page = %+v", first)
	}

	next := view.Observe(ctx, domain.CandidateFilters{Status: domain.StatusContacted})
	if next.OK() {
		// the fetch may already have landed
		if len(next.Data) != 1 {
			t.Fatalf("contacted page = %+v", next)
		}
		return
	}
	if !next.IsPreviousData || len(next.Data) != 2 {
		t.Fatalf("view while loading = %+v", next)
	}
}

func TestJobListViewReadKeepsPreviousPage(t *testing.T) {
	f := newFixture(t)
	f.jobs.closedGate = make(chan struct{})
	ctx := context.Background()

	view := f.hooks.JobListView()
	open := view.Read(ctx, domain.JobFilters{Status: domain.JobOpen})
	if !open.OK() || len(open.Data) != 1 || open.Data[0].ID != 1 {
		t.Fatalf("first page = %+v", open)
	}

	loading := view.Read(ctx, domain.JobFilters{Status: domain.JobClosed})
	if !loading.IsPreviousData || loading.Status != query.StatusLoading || loading.Data[0].ID != 1 {
		t.Fatalf("view while closed jobs load = %+v", loading)
	}

	close(f.jobs.closedGate)
	closedKey := query.ListKey(domain.KindJobs, domain.JobFilters{Status: domain.JobClosed}.Values())
	deadline := time.Now().Add(2 * time.Second)
	for {
		if e, ok := f.store.Get(closedKey); ok && e.HasValue {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("closed jobs never landed in the cache")
		}
		time.Sleep(5 * time.Millisecond)
	}

	closed := view.Read(ctx, domain.JobFilters{Status: domain.JobClosed})
	if !closed.OK() || closed.Data[0].ID != 9 {
		t.Fatalf("closed page = %+v", closed)
	}
	if n := f.jobs.listCalls.Load(); n != 2 {
		t.Fatalf("list calls = %d, want 2", n)
	}
}

func TestListViewReadWaitsWithoutPreviousPage(t *testing.T) {
	f := newFixture(t)

	r := f.hooks.JobListView().Read(context.Background(), domain.JobFilters{Status: domain.JobDraft})
	if !r.OK() || r.IsPreviousData || len(r.Data) != 1 {
		t.Fatalf("first read of a fresh view = %+v", r)
	}
}
