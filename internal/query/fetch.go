package query

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Status is the lifecycle state of a read
type Status int

const (
	// StatusIdle means the read was skipped; nothing was requested
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Fetcher loads the value for one key
type Fetcher[T any] func(ctx context.Context) (T, error)

// Result is what a consumer sees for one read
type Result[T any] struct {
	Data      T
	Status    Status
	Err       error
	UpdatedAt time.Time

	// IsStale is set when Data is older than the staleness window or invalidated
	IsStale bool
	// IsFetching is set while a request for the key is in flight
	IsFetching bool
	// IsPreviousData is set when Data belongs to the key observed before this one
	IsPreviousData bool
}

// OK reports whether the read produced data for its own key
func (r Result[T]) OK() bool {
	return r.Status == StatusSuccess && !r.IsPreviousData
}

// Idle is the result of a read that was skipped
func Idle[T any]() Result[T] {
	return Result[T]{Status: StatusIdle}
}

// Fetch reads key through the cache.
//
// Fresh data is returned as is. Data that only aged past the staleness window
// is returned immediately while a background refetch runs. Missing or
// invalidated data is fetched and waited for. Concurrent reads of one key
// share a single request. If ctx ends first the caller gets ctx.Err() and the
// response is still written to the cache.
func Fetch[T any](ctx context.Context, s *Store, key Key, fetch Fetcher[T]) Result[T] {
	if s.isClosed() {
		return Result[T]{Status: StatusError, Err: ErrClosed}
	}

	if e, ok := s.Get(key); ok && e.HasValue && !e.Invalidated {
		if v, ok := e.Value.(T); ok {
			r := Result[T]{Data: v, Status: StatusSuccess, UpdatedAt: e.UpdatedAt, IsStale: e.Stale}
			if e.Stale {
				Prefetch(ctx, s, key, fetch)
				r.IsFetching = true
			}
			return r
		}
	}

	return wait[T](ctx, s, key, s.start(ctx, key, erase(fetch)))
}

// Refetch ignores freshness and waits for a new value, still sharing any
// request already in flight for key
func Refetch[T any](ctx context.Context, s *Store, key Key, fetch Fetcher[T]) Result[T] {
	if s.isClosed() {
		return Result[T]{Status: StatusError, Err: ErrClosed}
	}
	return wait[T](ctx, s, key, s.start(ctx, key, erase(fetch)))
}

// Prefetch starts a fetch for key without waiting for it
func Prefetch[T any](ctx context.Context, s *Store, key Key, fetch Fetcher[T]) {
	if s.isClosed() {
		return
	}
	_ = s.start(ctx, key, erase(fetch))
}

func wait[T any](ctx context.Context, s *Store, key Key, ch <-chan singleflight.Result) Result[T] {
	select {
	case res := <-ch:
		if res.Err != nil {
			return Result[T]{Status: StatusError, Err: res.Err}
		}
		v, ok := res.Val.(T)
		if !ok && res.Val != nil {
			return Result[T]{Status: StatusError, Err: fmt.Errorf("query: %s holds %T", key, res.Val)}
		}
		r := Result[T]{Data: v, Status: StatusSuccess}
		if e, ok := s.Get(key); ok {
			r.UpdatedAt = e.UpdatedAt
			r.IsStale = e.Invalidated
		}
		return r
	case <-ctx.Done():
		return Result[T]{Status: StatusError, Err: ctx.Err()}
	}
}

func erase[T any](fetch Fetcher[T]) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}
