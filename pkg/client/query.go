package client

import (
	"context"
	"slices"
	"sync"

	"github.com/Egorka7485/tgkadsf/internal/contract"
)

// State is a snapshot of a live query.
type State[T any] struct {
	Data    T
	Err     error
	Loading bool
	// Version counts completed fetches.
	Version int
}

// Query keeps the latest result of one read and refetches it whenever a
// mutation invalidates the operation it watches.
type Query[T any] struct {
	fetch func(ctx context.Context) (T, error)

	mu    sync.Mutex
	state State[T]
	subs  []func(State[T])
}

// Watch registers a live query for op. fetch is usually a Client method
// value, e.g. c.Cart.
func Watch[T any](c *Client, op contract.Operation, fetch func(ctx context.Context) (T, error)) *Query[T] {
	q := &Query[T]{fetch: fetch}
	c.watch(op, func() { q.Refetch(context.Background()) })
	return q
}

func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Subscribe calls f with every state change.
func (q *Query[T]) Subscribe(f func(State[T])) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.subs = append(q.subs, f)
}

// Refetch runs the read and publishes loading and result states.
func (q *Query[T]) Refetch(ctx context.Context) State[T] {
	q.set(func(s *State[T]) { s.Loading = true })

	data, err := q.fetch(ctx)
	return q.set(func(s *State[T]) {
		s.Loading = false
		s.Err = err
		if err == nil {
			s.Data = data
		}
		s.Version++
	})
}

func (q *Query[T]) set(f func(*State[T])) State[T] {
	q.mu.Lock()
	f(&q.state)
	st := q.state
	subs := slices.Clone(q.subs)
	q.mu.Unlock()

	for _, s := range subs {
		s(st)
	}
	return st
}
