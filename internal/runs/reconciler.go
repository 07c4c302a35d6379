// Package runs reconciles optimistic, locally written run records with
// periodically polled authoritative data, producing one best-known run status
// per tracked endpoint.
//
// There is no push channel from the backend: a trigger installs an optimistic
// record for zero-latency feedback, the start request adopts the backend's
// response, and a bounded poll loop converges on the authoritative terminal
// record.
package runs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/metagrid-io/catalog-console/internal/catalog"
	"github.com/metagrid-io/catalog-console/internal/notifier"
	"github.com/metagrid-io/catalog-console/internal/telemetry"
)

const (
	// defaultPollAttempts bounds the completion poll loop
	defaultPollAttempts = 30

	// defaultPollInterval is the fixed delay between poll attempts
	defaultPollInterval = time.Second
)

// Trigger outcome labels recorded on metrics
const (
	triggerOutcomeAccepted = "accepted"
	triggerOutcomeRejected = "rejected"
	triggerOutcomeFailed   = "failed"
)

// errRunNotTerminal makes the poll loop retry until the run settles.
var errRunNotTerminal = errors.New("run has not reached a terminal status")

// EndpointLookup resolves endpoints from the session-local index, so trigger
// preconditions never touch the network.
type EndpointLookup interface {
	Endpoint(id string) (*catalog.Endpoint, bool)
}

// Reconciler tracks the locally most credible run record per endpoint.
// Each endpoint has one independent override slot; concurrent triggers on the
// same endpoint are last-write-wins with no queuing or coalescing.
type Reconciler struct {
	svc     catalog.Service
	lookup  EndpointLookup
	metrics *telemetry.ConsoleMetrics

	pollAttempts int
	pollInterval time.Duration

	mu        sync.Mutex
	overrides map[string]*catalog.RunRecord

	notifier *notifier.Notifier
	wg       sync.WaitGroup
}

// Option is a function that configures the reconciler
type Option func(*Reconciler)

// WithPollAttempts sets the completion poll attempt budget.
func WithPollAttempts(attempts int) Option {
	return func(r *Reconciler) {
		if attempts > 0 {
			r.pollAttempts = attempts
		}
	}
}

// WithPollInterval sets the fixed delay between poll attempts.
func WithPollInterval(interval time.Duration) Option {
	return func(r *Reconciler) {
		if interval > 0 {
			r.pollInterval = interval
		}
	}
}

// WithMetrics sets the console metrics for the reconciler.
func WithMetrics(metrics *telemetry.ConsoleMetrics) Option {
	return func(r *Reconciler) {
		r.metrics = metrics
	}
}

// New creates a reconciler over the given catalog service and endpoint lookup.
func New(svc catalog.Service, lookup EndpointLookup, opts ...Option) *Reconciler {
	r := &Reconciler{
		svc:          svc,
		lookup:       lookup,
		pollAttempts: defaultPollAttempts,
		pollInterval: defaultPollInterval,
		overrides:    make(map[string]*catalog.RunRecord),
		notifier:     notifier.New(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Subscribe returns a channel pinged whenever a tracked record changes.
func (r *Reconciler) Subscribe() chan struct{} {
	return r.notifier.Subscribe()
}

// Unsubscribe removes a listener channel.
func (r *Reconciler) Unsubscribe(ch chan struct{}) {
	r.notifier.Unsubscribe(ch)
}

// Trigger validates preconditions, installs an optimistic RUNNING record, and
// issues the start request. Precondition failures are typed and raised before
// any network call. On a non-terminal response with a run id, a bounded
// completion poll is started in the background.
func (r *Reconciler) Trigger(ctx context.Context, resourceID string) (*catalog.RunRecord, error) {
	ep, ok := r.lookup.Endpoint(resourceID)
	if !ok {
		return nil, r.reject(ctx, &PreconditionError{
			ResourceID: resourceID,
			Reason:     ReasonUnknownResource,
			Message:    fmt.Sprintf("endpoint %s is not known", resourceID),
		})
	}
	if !ep.Permissions.CanTriggerCollection {
		return nil, r.reject(ctx, &PreconditionError{
			ResourceID: resourceID,
			Reason:     ReasonPermissionDenied,
			Message:    fmt.Sprintf("not permitted to trigger collection on endpoint %s", ep.Name),
		})
	}
	if !ep.HasCapability(catalog.CapabilityMetadata) {
		return nil, r.reject(ctx, &PreconditionError{
			ResourceID: resourceID,
			Reason:     ReasonCapabilityMissing,
			Message:    fmt.Sprintf("endpoint %s does not support metadata collection", ep.Name),
		})
	}
	if ep.Collection != nil && ep.Collection.Disabled {
		return nil, r.reject(ctx, &PreconditionError{
			ResourceID: resourceID,
			Reason:     ReasonCollectionDisabled,
			Message:    fmt.Sprintf("collection %s is disabled", ep.Collection.Name),
		})
	}

	// Optimistic record: the UI reflects activity with zero network latency.
	now := time.Now()
	optimistic := &catalog.RunRecord{
		ID:          fmt.Sprintf("pending-%d", now.UnixMilli()),
		Status:      catalog.RunStatusRunning,
		RequestedAt: now,
		ResourceID:  resourceID,
	}
	r.setOverride(optimistic)

	started, err := r.svc.StartRun(ctx, resourceID, uuid.NewString())
	if err != nil {
		completed := time.Now()
		r.setOverride(&catalog.RunRecord{
			ID:          optimistic.ID,
			Status:      catalog.RunStatusFailed,
			RequestedAt: optimistic.RequestedAt,
			CompletedAt: &completed,
			Error:       err.Error(),
			ResourceID:  resourceID,
		})
		r.metrics.RecordTrigger(ctx, resourceID, triggerOutcomeFailed)
		return nil, err
	}

	// Adopt the returned status, id, and error; keep the original
	// RequestedAt so merge ordering stays stable.
	merged := &catalog.RunRecord{
		ID:          started.ID,
		Status:      started.Status,
		RequestedAt: optimistic.RequestedAt,
		CompletedAt: started.CompletedAt,
		Error:       started.Error,
		ResourceID:  resourceID,
	}
	if merged.ID == "" {
		merged.ID = optimistic.ID
	}
	r.setOverride(merged)
	r.metrics.RecordTrigger(ctx, resourceID, triggerOutcomeAccepted)

	if !merged.Status.IsTerminal() && started.ID != "" {
		// The poll must outlive the triggering request: in the server the
		// caller's context is canceled as soon as the response is written.
		pollCtx := context.WithoutCancel(ctx)
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.pollCompletion(pollCtx, resourceID, started.ID)
		}()
	}

	return merged, nil
}

// pollCompletion re-queries the authoritative run listing until the run
// reaches a terminal status or the attempt budget is exhausted. Transient
// fetch errors are swallowed and retried; budget exhaustion stops the loop
// silently.
func (r *Reconciler) pollCompletion(ctx context.Context, resourceID, runID string) {
	operation := func() (*catalog.RunRecord, error) {
		r.metrics.RecordPollAttempt(ctx, resourceID)

		listing, err := r.svc.ListRuns(ctx, resourceID)
		if err != nil {
			// Transient; retried on the next tick.
			return nil, err
		}
		for _, rec := range listing {
			if rec.ID == runID && rec.Status.IsTerminal() {
				return rec, nil
			}
		}
		return nil, errRunNotTerminal
	}

	rec, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(r.pollInterval)),
		backoff.WithMaxTries(uint(r.pollAttempts)),
	)
	if err != nil {
		slog.Debug("Run completion poll ended without a terminal status",
			"resource", resourceID,
			"run", runID,
			"error", err)
		return
	}

	r.setOverride(rec)
}

// Reconcile merges a bulk listing with the override map, returning the best
// known record per resource. Overrides superseded by a terminal listing
// candidate at or after their own timestamp are dropped.
func (r *Reconciler) Reconcile(listing []*catalog.RunRecord) map[string]*catalog.RunRecord {
	// Pick the most credible candidate per resource first.
	candidates := make(map[string]*catalog.RunRecord)
	for _, rec := range listing {
		if rec == nil || rec.ResourceID == "" {
			continue
		}
		candidates[rec.ResourceID] = Merge(candidates[rec.ResourceID], rec)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	merged := make(map[string]*catalog.RunRecord, len(candidates)+len(r.overrides))
	for id, override := range r.overrides {
		merged[id] = override
	}
	for id, candidate := range candidates {
		override := r.overrides[id]
		if supersedes(candidate, override) {
			delete(r.overrides, id)
		}
		merged[id] = Merge(override, candidate)
	}
	return merged
}

// Record returns the override for one resource, if any.
func (r *Reconciler) Record(resourceID string) (*catalog.RunRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.overrides[resourceID]
	return rec, ok
}

// Snapshot returns a copy of the override map.
func (r *Reconciler) Snapshot() map[string]*catalog.RunRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := make(map[string]*catalog.RunRecord, len(r.overrides))
	for id, rec := range r.overrides {
		snap[id] = rec
	}
	return snap
}

// Wait blocks until all in-flight completion polls have finished.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

func (r *Reconciler) setOverride(rec *catalog.RunRecord) {
	r.mu.Lock()
	r.overrides[rec.ResourceID] = rec
	r.mu.Unlock()
	r.notifier.Broadcast()
}

func (r *Reconciler) reject(ctx context.Context, err *PreconditionError) *PreconditionError {
	r.metrics.RecordTrigger(ctx, err.ResourceID, triggerOutcomeRejected)
	return err
}
