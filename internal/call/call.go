// Package call models the lifecycle of a single backend call as a state machine:
// Idle -> Pending -> Resolved | Rejected. Both outcomes are terminal and a call
// cannot be cancelled or restarted.
package call

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidTransition is returned for any transition the state machine does not allow.
var ErrInvalidTransition = errors.New("invalid call state transition")

// State is the position of a call in its lifecycle.
type State int

const (
	Idle State = iota
	Pending
	Resolved
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == Resolved || s == Rejected
}

// Snapshot is an immutable view of a call.
type Snapshot[T any] struct {
	Operation  string
	State      State
	Value      T
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the time spent pending; zero until the call is terminal.
func (s Snapshot[T]) Duration() time.Duration {
	if !s.State.Terminal() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Observer receives every transition. It is called outside the call's lock.
type Observer[T any] func(Snapshot[T])

// Call is safe for concurrent use.
type Call[T any] struct {
	mu        sync.Mutex
	snap      Snapshot[T]
	observers []Observer[T]
	now       func() time.Time
}

// New returns an idle call for operation.
func New[T any](operation string, observers ...Observer[T]) *Call[T] {
	return &Call[T]{
		snap:      Snapshot[T]{Operation: operation, State: Idle},
		observers: observers,
		now:       time.Now,
	}
}

// Snapshot returns the current state.
func (c *Call[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Start moves an idle call to pending.
func (c *Call[T]) Start() error {
	return c.transition(Idle, Pending, func(s *Snapshot[T]) {
		s.StartedAt = c.now()
	})
}

// Resolve completes a pending call with v.
func (c *Call[T]) Resolve(v T) error {
	return c.transition(Pending, Resolved, func(s *Snapshot[T]) {
		s.Value = v
		s.FinishedAt = c.now()
	})
}

// Reject completes a pending call with err.
func (c *Call[T]) Reject(err error) error {
	if err == nil {
		return fmt.Errorf("reject with nil error: %w", ErrInvalidTransition)
	}
	return c.transition(Pending, Rejected, func(s *Snapshot[T]) {
		s.Err = err
		s.FinishedAt = c.now()
	})
}

func (c *Call[T]) transition(from, to State, apply func(*Snapshot[T])) error {
	c.mu.Lock()
	if c.snap.State != from {
		op, cur := c.snap.Operation, c.snap.State
		c.mu.Unlock()
		return fmt.Errorf("%s: %s -> %s: %w", op, cur, to, ErrInvalidTransition)
	}
	c.snap.State = to
	apply(&c.snap)
	snap := c.snap
	observers := c.observers
	c.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
	return nil
}

// Run drives a call through its whole lifecycle and returns the terminal snapshot.
// fn is invoked exactly once; its error rejects the call.
func Run[T any](ctx context.Context, operation string, fn func(context.Context) (T, error), observers ...Observer[T]) Snapshot[T] {
	c := New(operation, observers...)
	_ = c.Start()
	v, err := fn(ctx)
	if err != nil {
		_ = c.Reject(err)
	} else {
		_ = c.Resolve(v)
	}
	return c.Snapshot()
}
