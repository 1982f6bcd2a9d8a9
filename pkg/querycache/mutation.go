package querycache

import (
	"context"
	"sync"
)

// State is the lifecycle position of a Mutation:
//
//	Idle → Mutating → Committed | RolledBack → Settled
type State int

const (
	Idle State = iota
	Mutating
	Committed
	RolledBack
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Mutating:
		return "mutating"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	case Settled:
		return "settled"
	}
	return "unknown"
}

// Mutation runs a server write against one cache key with an optimistic local
// update. T is the cached type, V the mutation input, R the server result.
type Mutation[T, V, R any] struct {
	Cache *Cache[T]
	Key   string

	// Optimistic synthesizes the expected cache value. has is false when the
	// key held no value. Nil skips the optimistic step.
	Optimistic func(current T, has bool, vars V) T
	// Run performs the server call.
	Run func(ctx context.Context, vars V) (R, error)
	// OnError is notified after a rollback.
	OnError func(err error)
	// OnState observes every transition. Useful for UI spinners and tests.
	OnState func(State)

	mu    sync.Mutex
	state State
}

func (m *Mutation[T, V, R]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mutation[T, V, R]) transition(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	if m.OnState != nil {
		m.OnState(s)
	}
}

// Execute applies the optimistic update, runs the server call and reconciles.
// On failure the cache is restored to exactly its pre-mutation state. Either
// way the key is invalidated at the end so the next read sees server truth.
func (m *Mutation[T, V, R]) Execute(ctx context.Context, vars V) (R, error) {
	m.transition(Mutating)

	m.Cache.Cancel(m.Key)
	snap := m.Cache.snapshot(m.Key)
	if m.Optimistic != nil {
		m.Cache.update(m.Key, func(current T, has bool) T {
			return m.Optimistic(current, has, vars)
		})
	}

	res, err := m.Run(ctx, vars)
	if err != nil {
		m.Cache.restore(m.Key, snap)
		m.transition(RolledBack)
		if m.OnError != nil {
			m.OnError(err)
		}
	} else {
		m.Cache.Invalidate(m.Key)
		m.transition(Committed)
	}

	m.Cache.Invalidate(m.Key)
	m.transition(Settled)
	return res, err
}
