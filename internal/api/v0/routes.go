// Package v0 provides the REST handlers for the console API.
package v0

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/metagrid-io/catalog-console/internal/catalog"
	"github.com/metagrid-io/catalog-console/internal/graphql"
	"github.com/metagrid-io/catalog-console/internal/pager"
	"github.com/metagrid-io/catalog-console/internal/runs"
	"github.com/metagrid-io/catalog-console/internal/versions"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// PageResponse is one page of a listing plus its cursor position
type PageResponse[T any] struct {
	Items    []T            `json:"items"`
	PageInfo pager.PageInfo `json:"pageInfo"`
}

// Routes defines the routes for the console API with dependency injection
type Routes struct {
	svc        catalog.Service
	reconciler *runs.Reconciler
	index      *catalog.Index
	pageSize   int
}

// NewRoutes creates a new Routes instance with the provided collaborators
func NewRoutes(svc catalog.Service, reconciler *runs.Reconciler, index *catalog.Index, pageSize int) *Routes {
	return &Routes{
		svc:        svc,
		reconciler: reconciler,
		index:      index,
		pageSize:   pageSize,
	}
}

// Router creates a new router for the console API
func Router(svc catalog.Service, reconciler *runs.Reconciler, index *catalog.Index, pageSize int) http.Handler {
	routes := NewRoutes(svc, reconciler, index, pageSize)

	r := chi.NewRouter()

	r.Get("/endpoints", routes.listEndpoints)
	r.Get("/datasets", routes.listDatasets)
	r.Get("/runs", routes.getRunOverrides)
	r.Get("/runs/{endpointID}", routes.getRunStatus)
	r.Post("/runs/{endpointID}", routes.triggerRun)

	return r
}

// HealthRouter creates a router for health check endpoints
func HealthRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	info := versions.GetVersionInfo()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(info); err != nil {
		slog.Error("Failed to encode version info", "error", err)
	}
}

// listEndpoints handles GET /v0/endpoints
func (rr *Routes) listEndpoints(w http.ResponseWriter, r *http.Request) {
	first, after := rr.pageParams(r)

	conn, err := rr.svc.ListEndpoints(r.Context(), first, after)
	if err != nil {
		rr.writeFetchError(w, "endpoints", err)
		return
	}

	// Keep the session lookup warm for trigger preconditions and preview
	// classification.
	rr.index.Upsert(conn.Nodes...)

	rr.writeJSONResponse(w, PageResponse[*catalog.Endpoint]{
		Items:    conn.Nodes,
		PageInfo: conn.PageInfo,
	})
}

// listDatasets handles GET /v0/datasets
func (rr *Routes) listDatasets(w http.ResponseWriter, r *http.Request) {
	first, after := rr.pageParams(r)

	conn, err := rr.svc.ListDatasets(r.Context(), first, after)
	if err != nil {
		rr.writeFetchError(w, "datasets", err)
		return
	}

	rr.writeJSONResponse(w, PageResponse[*catalog.Dataset]{
		Items:    conn.Nodes,
		PageInfo: conn.PageInfo,
	})
}

// getRunOverrides handles GET /v0/runs
func (rr *Routes) getRunOverrides(w http.ResponseWriter, _ *http.Request) {
	rr.writeJSONResponse(w, rr.reconciler.Snapshot())
}

// getRunStatus handles GET /v0/runs/{endpointID}. It reconciles the current
// override with a fresh authoritative listing.
func (rr *Routes) getRunStatus(w http.ResponseWriter, r *http.Request) {
	endpointID := chi.URLParam(r, "endpointID")

	listing, err := rr.svc.ListRuns(r.Context(), endpointID)
	if err != nil {
		rr.writeFetchError(w, "runs", err)
		return
	}

	merged := rr.reconciler.Reconcile(listing)
	rec, ok := merged[endpointID]
	if !ok {
		rr.writeErrorResponse(w, "no runs recorded for endpoint "+endpointID, http.StatusNotFound)
		return
	}

	rr.writeJSONResponse(w, rec)
}

// triggerRun handles POST /v0/runs/{endpointID}
func (rr *Routes) triggerRun(w http.ResponseWriter, r *http.Request) {
	endpointID := chi.URLParam(r, "endpointID")

	rec, err := rr.reconciler.Trigger(r.Context(), endpointID)
	if err != nil {
		var precondition *runs.PreconditionError
		if errors.As(err, &precondition) {
			rr.writeErrorResponse(w, precondition.Message, preconditionStatus(precondition.Reason))
			return
		}
		slog.Error("Failed to trigger collection run", "endpoint", endpointID, "error", err)
		rr.writeErrorResponse(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		slog.Error("Failed to encode trigger response", "error", err)
	}
}

func preconditionStatus(reason string) int {
	switch reason {
	case runs.ReasonUnknownResource:
		return http.StatusNotFound
	case runs.ReasonPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusConflict
	}
}

func (rr *Routes) pageParams(r *http.Request) (int, string) {
	first := rr.pageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			first = parsed
		}
	}
	return first, r.URL.Query().Get("cursor")
}

// writeFetchError maps executor failures onto HTTP statuses. A not-configured
// backend is reported as 503 so the UI can show its own empty state.
func (rr *Routes) writeFetchError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, graphql.ErrNotConfigured) {
		rr.writeErrorResponse(w, "query backend not configured", http.StatusServiceUnavailable)
		return
	}
	slog.Error("Failed to fetch from query backend", "what", what, "error", err)
	rr.writeErrorResponse(w, err.Error(), http.StatusBadGateway)
}

// writeJSONResponse writes a JSON response with the given data
func (*Routes) writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeErrorResponse writes a standardized error response
func (*Routes) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
