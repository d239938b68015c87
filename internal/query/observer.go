package query

import (
	"context"
	"sync"
)

// Observer is one consumer's live view over a changing key, such as a list
// whose filters the user edits. When the key changes and the new key has no
// data yet, the previous key's data stays visible, flagged IsPreviousData,
// instead of dropping to an empty loading state.
type Observer[T any] struct {
	store *Store

	mu      sync.Mutex
	key     Key
	hasKey  bool
	last    Result[T]
	hasLast bool
}

func NewObserver[T any](s *Store) *Observer[T] {
	return &Observer[T]{store: s}
}

// Observe returns the current view of key without blocking and starts a fetch
// when the entry is missing or stale. A failed fetch is reported, not retried;
// call Refresh to try again.
func (o *Observer[T]) Observe(ctx context.Context, key Key, fetch Fetcher[T]) Result[T] {
	s := o.store
	if s.isClosed() {
		return Result[T]{Status: StatusError, Err: ErrClosed}
	}

	e, ok := s.Get(key)
	if ok && e.HasValue {
		if v, typed := e.Value.(T); typed {
			if e.Stale && !e.Fetching {
				Prefetch(ctx, s, key, fetch)
				e.Fetching = true
			}
			r := Result[T]{
				Data:       v,
				Status:     StatusSuccess,
				UpdatedAt:  e.UpdatedAt,
				IsStale:    e.Stale,
				IsFetching: e.Fetching,
			}
			o.remember(key, r)
			return r
		}
	}

	if ok && e.Err != nil && !e.Fetching {
		r := o.placeholder(key)
		r.Status = StatusError
		r.Err = e.Err
		return r
	}

	if !ok || !e.Fetching {
		Prefetch(ctx, s, key, fetch)
	}

	r := o.placeholder(key)
	r.Status = StatusLoading
	r.IsFetching = true
	return r
}

// Refresh waits for a new value for key and updates the view
func (o *Observer[T]) Refresh(ctx context.Context, key Key, fetch Fetcher[T]) Result[T] {
	r := Refetch(ctx, o.store, key, fetch)
	if r.Status == StatusSuccess {
		o.remember(key, r)
		return r
	}

	p := o.placeholder(key)
	p.Status = r.Status
	p.Err = r.Err
	return p
}

// Key returns the key last observed
func (o *Observer[T]) Key() (Key, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.key, o.hasKey
}

func (o *Observer[T]) remember(key Key, r Result[T]) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.key, o.hasKey = key, true
	o.last, o.hasLast = r, true
}

// placeholder carries the last data seen under another key
func (o *Observer[T]) placeholder(key Key) Result[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.key, o.hasKey = key, true
	if !o.hasLast {
		return Result[T]{}
	}
	return Result[T]{
		Data:           o.last.Data,
		UpdatedAt:      o.last.UpdatedAt,
		IsStale:        true,
		IsPreviousData: true,
	}
}
