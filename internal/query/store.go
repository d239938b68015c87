// Package query is the process-wide read cache behind the dashboard hooks.
package query

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/honeycarbs/hirepipe/pkg/logging"
)

// DefaultStaleTime is how long fetched data counts as fresh
const DefaultStaleTime = 5 * time.Minute

// ErrClosed is returned by reads against a closed store
var ErrClosed = errors.New("query: store is closed")

// Scope separates collection reads from single-item reads of a kind
type Scope string

const (
	ScopeList Scope = "list"
	ScopeItem Scope = "item"
)

// Key identifies one cache entry
type Key struct {
	Kind   string
	Scope  Scope
	Params string
}

// ListKey keys a collection read by its canonical (sorted) filter encoding
func ListKey(kind string, params url.Values) Key {
	return Key{Kind: kind, Scope: ScopeList, Params: params.Encode()}
}

// ItemKey keys a single-item read
func ItemKey(kind, id string) Key {
	return Key{Kind: kind, Scope: ScopeItem, Params: id}
}

func (k Key) String() string {
	return k.Kind + "/" + string(k.Scope) + "?" + k.Params
}

// Entry is a snapshot of one cache entry
type Entry struct {
	Value       any
	HasValue    bool
	UpdatedAt   time.Time
	Invalidated bool
	Stale       bool
	Fetching    bool
	Err         error
}

type entry struct {
	value     any
	hasValue  bool
	valueGen  uint64
	updatedAt time.Time

	// gen advances on every invalidation; a fetch started under an older gen
	// lands as stale
	gen         uint64
	invalidated bool
	inflight    int
	err         error
}

// Option configures a Store
type Option func(*Store)

// WithStaleTime overrides DefaultStaleTime
func WithStaleTime(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.staleTime = d
		}
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithLogger sets the store logger
func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store holds every cached read for the life of the process. Create it at
// startup, hand it to the hooks layer and Close it at shutdown.
type Store struct {
	staleTime time.Duration
	clock     func() time.Time
	logger    *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group

	mu      sync.Mutex
	entries map[Key]*entry
	closed  bool
}

// NewStore builds an empty Store
func NewStore(opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		staleTime: DefaultStaleTime,
		clock:     time.Now,
		logger:    logging.NewNop(),
		ctx:       ctx,
		cancel:    cancel,
		entries:   make(map[Key]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a snapshot of key's entry
func (s *Store) Get(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return s.snapshot(e), true
}

// Set stores value under key as freshly fetched
func (s *Store) Set(key Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	e := s.entryFor(key)
	e.value = value
	e.hasValue = true
	e.valueGen = e.gen
	e.updatedAt = s.clock()
	e.invalidated = false
	e.err = nil
}

// Invalidate marks every entry of kind stale and returns the number touched.
// A fetch already in flight keeps serving joiners; its result lands marked
// invalidated, so the first read after it issues a new request.
func (s *Store) Invalidate(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, e := range s.entries {
		if key.Kind != kind {
			continue
		}
		e.gen++
		e.invalidated = true
		n++
	}

	s.logger.Debug("cache invalidated", "kind", kind, "entries", n)
	return n
}

// Keys lists the cached keys of kind, sorted
func (s *Store) Keys(kind string) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Key, 0)
	for key := range s.entries {
		if key.Kind == kind {
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Close drops every entry and cancels in-flight fetches
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.entries = make(map[Key]*entry)
	s.mu.Unlock()

	s.cancel()
	s.logger.Debug("query store closed")
}

func (s *Store) entryFor(key Key) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

func (s *Store) snapshot(e *entry) Entry {
	return Entry{
		Value:       e.value,
		HasValue:    e.hasValue,
		UpdatedAt:   e.updatedAt,
		Invalidated: e.invalidated,
		Stale:       s.isStale(e),
		Fetching:    e.inflight > 0,
		Err:         e.err,
	}
}

func (s *Store) isStale(e *entry) bool {
	if !e.hasValue || e.invalidated {
		return true
	}
	return s.clock().Sub(e.updatedAt) >= s.staleTime
}

// begin registers a fetch for key and returns the generation it runs under
func (s *Store) begin(key Key) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	e := s.entryFor(key)
	e.inflight++
	return e.gen, true
}

func (s *Store) complete(key Key, gen uint64, value any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	e := s.entryFor(key)
	if e.inflight > 0 {
		e.inflight--
	}

	if err != nil {
		e.err = err
		s.logger.Debug("cache fetch failed", "key", key.String(), "err", err)
		return
	}

	// a value Set after this fetch began is newer
	if e.hasValue && gen < e.valueGen {
		return
	}

	e.value = value
	e.hasValue = true
	e.valueGen = gen
	e.updatedAt = s.clock()
	e.invalidated = gen != e.gen
	e.err = nil
}

// start joins or launches the fetch for key. The fetch is bound to the store's
// lifetime, not to ctx; ctx only lends its values (request-scoped collectors).
func (s *Store) start(ctx context.Context, key Key, fetch func(context.Context) (any, error)) <-chan singleflight.Result {
	return s.group.DoChan(key.String(), func() (any, error) {
		gen, ok := s.begin(key)
		if !ok {
			return nil, ErrClosed
		}

		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		stop := context.AfterFunc(s.ctx, cancel)
		defer func() {
			stop()
			cancel()
		}()

		value, err := fetch(fctx)
		s.complete(key, gen, value, err)
		return value, err
	})
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
