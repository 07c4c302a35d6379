// Package action wraps one async operation with an observable lifecycle state.
package action

import (
	"context"
	"fmt"
	"sync"
)

// State represents the lifecycle state of a runner
type State string

const (
	// StateIdle means no run has started or the runner was reset
	StateIdle State = "idle"

	// StatePending means a run is in flight
	StatePending State = "pending"

	// StateSuccess means the last settled run succeeded
	StateSuccess State = "success"

	// StateError means the last settled run failed
	StateError State = "error"
)

// Func is the operation a runner wraps.
type Func func(ctx context.Context, args ...any) (any, error)

// Option is a function that configures a runner
type Option func(*Runner)

// WithOnSuccess sets the callback invoked with the result of a successful run.
func WithOnSuccess(fn func(result any)) Option {
	return func(r *Runner) {
		r.onSuccess = fn
	}
}

// WithOnError sets the callback invoked with the error of a failed run.
func WithOnError(fn func(err error)) Option {
	return func(r *Runner) {
		r.onError = fn
	}
}

// Runner wraps a caller-supplied async operation.
//
// Calling Run while already pending is permitted: both resolutions mutate the
// shared state independently and the last to settle determines the externally
// observed final state. Callers that need single-flight semantics must gate
// calls themselves.
type Runner struct {
	fn        Func
	onSuccess func(result any)
	onError   func(err error)

	mu      sync.Mutex
	state   State
	lastErr error
}

// NewRunner creates a runner for the given operation.
func NewRunner(fn Func, opts ...Option) *Runner {
	r := &Runner{
		fn:    fn,
		state: StateIdle,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// State returns the runner's current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the error of the last failed run, nil otherwise.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// IsPending reports whether a run is in flight.
func (r *Runner) IsPending() bool {
	return r.State() == StatePending
}

// Run executes the wrapped operation. The pending state is set synchronously,
// before the operation is awaited. On failure the error is normalized, stored,
// passed to the error callback, and returned so the caller can chain handling
// without duplicating notification logic.
func (r *Runner) Run(ctx context.Context, args ...any) (any, error) {
	r.mu.Lock()
	r.state = StatePending
	r.lastErr = nil
	r.mu.Unlock()

	result, err := r.runProtected(ctx, args...)
	if err != nil {
		r.mu.Lock()
		r.state = StateError
		r.lastErr = err
		r.mu.Unlock()

		if r.onError != nil {
			r.onError(err)
		}
		return nil, err
	}

	r.mu.Lock()
	r.state = StateSuccess
	r.lastErr = nil
	r.mu.Unlock()

	if r.onSuccess != nil {
		r.onSuccess(result)
	}
	return result, nil
}

// runProtected invokes the wrapped operation, normalizing panics to errors so
// a misbehaving operation cannot leave the runner stuck in pending.
func (r *Runner) runProtected(ctx context.Context, args ...any) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if recErr, ok := rec.(error); ok {
				err = recErr
				return
			}
			err = fmt.Errorf("%v", rec)
		}
	}()

	return r.fn(ctx, args...)
}

// Reset returns the runner to idle and clears the error. Valid in any state,
// including while pending: a run settling afterwards will still overwrite the
// state, per the last-settled-wins contract.
func (r *Runner) Reset() {
	r.mu.Lock()
	r.state = StateIdle
	r.lastErr = nil
	r.mu.Unlock()
}
