// Package pager sequences cursor-paginated fetches for one logical list.
//
// Each loader owns a monotonically increasing request id; a response is
// applied only if its originating id still equals the loader's current id,
// which is how a faster later request cancels the effect of a slower earlier
// one without any real network cancellation.
package pager

import (
	"context"
	"sync"
	"time"

	"github.com/metagrid-io/catalog-console/internal/graphql"
	"github.com/metagrid-io/catalog-console/internal/notifier"
	"github.com/metagrid-io/catalog-console/internal/telemetry"
)

// State is a point-in-time snapshot of a loader. Items preserves page order:
// replaced wholesale on a first fetch, appended to on a next-page fetch.
type State[T any] struct {
	Items    []T
	Loading  bool
	Err      string
	PageInfo PageInfo

	// Configured is false when the loader has no usable query backend.
	// This is a distinct condition from a transport error.
	Configured bool
}

// Loader fetches one cursor-paginated list through a query executor.
type Loader[T any] struct {
	exec     graphql.Executor
	op       graphql.Operation
	vars     map[string]any
	pageSize int
	sel      SelectConnection[T]

	metrics *telemetry.ConsoleMetrics

	mu       sync.Mutex
	reqID    uint64
	state    State[T]
	notifier *notifier.Notifier
}

// Option is a function that configures a loader
type Option[T any] func(*Loader[T])

// WithMetrics sets the console metrics used to record fetch durations.
func WithMetrics[T any](metrics *telemetry.ConsoleMetrics) Option[T] {
	return func(l *Loader[T]) {
		l.metrics = metrics
	}
}

// NewLoader creates a loader for the given operation, variables, and page
// size. Consumers supply a SelectConnection projection so the loader stays
// query-shape-agnostic. A loader is bound to one parameter set; construct a
// new loader (and drop the old one) when the parameters change.
func NewLoader[T any](
	exec graphql.Executor,
	op graphql.Operation,
	variables map[string]any,
	pageSize int,
	sel SelectConnection[T],
	opts ...Option[T],
) *Loader[T] {
	l := &Loader[T]{
		exec:     exec,
		op:       op,
		vars:     variables,
		pageSize: pageSize,
		sel:      sel,
		notifier: notifier.New(),
		state: State[T]{
			Configured: exec != nil && exec.Configured(),
		},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Snapshot returns a copy of the loader's current state.
func (l *Loader[T]) Snapshot() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.state
	snap.Items = append([]T(nil), l.state.Items...)
	return snap
}

// Subscribe returns a channel pinged whenever the loader's state changes.
func (l *Loader[T]) Subscribe() chan struct{} {
	return l.notifier.Subscribe()
}

// Unsubscribe removes a listener channel.
func (l *Loader[T]) Unsubscribe(ch chan struct{}) {
	l.notifier.Unsubscribe(ch)
}

// FetchFirst fetches the first page, replacing any previously loaded items.
// A response belonging to a superseded request is discarded silently.
func (l *Loader[T]) FetchFirst(ctx context.Context) error {
	l.mu.Lock()
	if !l.configured() {
		l.resetUnconfiguredLocked()
		l.mu.Unlock()
		return nil
	}

	l.reqID++
	id := l.reqID
	l.state.Loading = true
	l.state.Err = ""
	l.mu.Unlock()
	l.notifier.Broadcast()

	conn, err := l.fetch(ctx, "")

	l.mu.Lock()
	if id != l.reqID {
		// Superseded by a newer request; drop this response.
		l.mu.Unlock()
		return nil
	}
	if err != nil {
		l.applyErrorLocked(err)
		l.mu.Unlock()
		l.notifier.Broadcast()
		return err
	}

	l.state.Items = conn.Nodes
	l.state.PageInfo = conn.PageInfo
	l.state.Loading = false
	l.state.Err = ""
	l.mu.Unlock()
	l.notifier.Broadcast()
	return nil
}

// FetchNext fetches the page after the current end cursor and appends its
// nodes. It performs no network call when there is no next page, no end
// cursor, or a fetch is already in flight.
func (l *Loader[T]) FetchNext(ctx context.Context) error {
	l.mu.Lock()
	if !l.configured() {
		l.resetUnconfiguredLocked()
		l.mu.Unlock()
		return nil
	}
	if l.state.Loading || !l.state.PageInfo.HasNextPage || l.state.PageInfo.EndCursor == "" {
		l.mu.Unlock()
		return nil
	}

	l.reqID++
	id := l.reqID
	after := l.state.PageInfo.EndCursor
	l.state.Loading = true
	l.state.Err = ""
	l.mu.Unlock()
	l.notifier.Broadcast()

	conn, err := l.fetch(ctx, after)

	l.mu.Lock()
	if id != l.reqID {
		l.mu.Unlock()
		return nil
	}
	if err != nil {
		l.applyErrorLocked(err)
		l.mu.Unlock()
		l.notifier.Broadcast()
		return err
	}

	l.state.Items = append(l.state.Items, conn.Nodes...)
	l.state.PageInfo = conn.PageInfo
	// Once any append has occurred, the previous page is always reachable.
	l.state.PageInfo.HasPreviousPage = true
	l.state.Loading = false
	l.state.Err = ""
	l.mu.Unlock()
	l.notifier.Broadcast()
	return nil
}

// Refresh refetches from the first page, invalidating any in-flight request.
func (l *Loader[T]) Refresh(ctx context.Context) error {
	return l.FetchFirst(ctx)
}

func (l *Loader[T]) configured() bool {
	return l.exec != nil && l.exec.Configured()
}

// resetUnconfiguredLocked resets to the explicit not-configured empty state.
func (l *Loader[T]) resetUnconfiguredLocked() {
	l.reqID++
	l.state = State[T]{Configured: false}
}

// applyErrorLocked rolls the loader back to empty and records the message.
// Partial pages are never kept alongside an error.
func (l *Loader[T]) applyErrorLocked(err error) {
	l.state.Items = nil
	l.state.PageInfo = PageInfo{}
	l.state.Loading = false
	l.state.Err = err.Error()
}

func (l *Loader[T]) fetch(ctx context.Context, after string) (Connection[T], error) {
	vars := make(map[string]any, len(l.vars)+2)
	for k, v := range l.vars {
		vars[k] = v
	}
	vars["first"] = l.pageSize
	if after != "" {
		vars["after"] = after
	}

	start := time.Now()
	payload, err := l.exec.Execute(ctx, l.op, vars)
	if err != nil {
		l.metrics.RecordFetchDuration(ctx, l.op.Name, time.Since(start), false)
		return Connection[T]{}, err
	}

	conn, err := l.sel(payload)
	l.metrics.RecordFetchDuration(ctx, l.op.Name, time.Since(start), err == nil)
	return conn, err
}
