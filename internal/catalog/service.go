package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/metagrid-io/catalog-console/internal/graphql"
	"github.com/metagrid-io/catalog-console/internal/pager"
)

// defaultRunListingLimit bounds the authoritative run listing fetched per
// endpoint; the reconciler only ever needs the most recent runs.
const defaultRunListingLimit = 20

// EndpointsConnection projects the ListEndpoints payload for a pager loader.
var EndpointsConnection = pager.ConnectionAtPath[*Endpoint]("endpoints")

// DatasetsConnection projects the ListDatasets payload for a pager loader.
var DatasetsConnection = pager.ConnectionAtPath[*Dataset]("datasets")

// Service is the typed surface of the catalog backend used by the sync core.
//
//go:generate mockgen -destination=mocks/mock_service.go -package=mocks github.com/metagrid-io/catalog-console/internal/catalog Service
type Service interface {
	// ListEndpoints fetches one page of collection endpoints.
	ListEndpoints(ctx context.Context, first int, after string) (pager.Connection[*Endpoint], error)

	// ListDatasets fetches one page of cataloged datasets.
	ListDatasets(ctx context.Context, first int, after string) (pager.Connection[*Dataset], error)

	// ListRuns fetches the authoritative run listing for an endpoint,
	// most recent first.
	ListRuns(ctx context.Context, endpointID string) ([]*RunRecord, error)

	// StartRun asks the backend to start a collection run. The request key
	// lets the backend deduplicate retried starts.
	StartRun(ctx context.Context, endpointID, requestKey string) (*RunRecord, error)

	// PreviewDataset samples up to limit rows from a dataset.
	PreviewDataset(ctx context.Context, datasetID string, limit int) (*PreviewSample, error)
}

// defaultService is the default implementation of Service
type defaultService struct {
	exec graphql.Executor
}

// NewDefaultService creates a Service backed by the given query executor.
func NewDefaultService(exec graphql.Executor) Service {
	return &defaultService{exec: exec}
}

func (s *defaultService) ListEndpoints(ctx context.Context, first int, after string) (pager.Connection[*Endpoint], error) {
	return listConnection(ctx, s.exec, OpListEndpoints, EndpointsConnection, first, after)
}

func (s *defaultService) ListDatasets(ctx context.Context, first int, after string) (pager.Connection[*Dataset], error) {
	return listConnection(ctx, s.exec, OpListDatasets, DatasetsConnection, first, after)
}

// listConnection is the shared fetch-and-project path for the list operations.
func listConnection[T any](
	ctx context.Context,
	exec graphql.Executor,
	op graphql.Operation,
	sel pager.SelectConnection[T],
	first int,
	after string,
) (pager.Connection[T], error) {
	vars := map[string]any{"first": first}
	if after != "" {
		vars["after"] = after
	}

	payload, err := exec.Execute(ctx, op, vars)
	if err != nil {
		return pager.Connection[T]{}, err
	}

	return sel(payload)
}

// runPayload is the wire shape of a run record
type runPayload struct {
	ID          string     `json:"id"`
	Status      RunStatus  `json:"status"`
	RequestedAt time.Time  `json:"requestedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	Error       string     `json:"error"`
	EndpointID  string     `json:"endpointId"`
}

func (p *runPayload) record() *RunRecord {
	return &RunRecord{
		ID:          p.ID,
		Status:      p.Status,
		RequestedAt: p.RequestedAt,
		CompletedAt: p.CompletedAt,
		Error:       p.Error,
		ResourceID:  p.EndpointID,
	}
}

func (s *defaultService) ListRuns(ctx context.Context, endpointID string) ([]*RunRecord, error) {
	payload, err := s.exec.Execute(ctx, OpListRuns, map[string]any{
		"endpointId": endpointID,
		"limit":      defaultRunListingLimit,
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Runs []*runPayload `json:"runs"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode run listing for endpoint %s: %w", endpointID, err)
	}

	records := make([]*RunRecord, 0, len(decoded.Runs))
	for _, p := range decoded.Runs {
		records = append(records, p.record())
	}
	return records, nil
}

func (s *defaultService) StartRun(ctx context.Context, endpointID, requestKey string) (*RunRecord, error) {
	payload, err := s.exec.Execute(ctx, OpStartRun, map[string]any{
		"endpointId": endpointID,
		"requestKey": requestKey,
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		StartCollectionRun *runPayload `json:"startCollectionRun"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode start response for endpoint %s: %w", endpointID, err)
	}
	if decoded.StartCollectionRun == nil {
		return nil, fmt.Errorf("backend returned no run for endpoint %s", endpointID)
	}

	return decoded.StartCollectionRun.record(), nil
}

func (s *defaultService) PreviewDataset(ctx context.Context, datasetID string, limit int) (*PreviewSample, error) {
	payload, err := s.exec.Execute(ctx, OpPreviewDataset, map[string]any{
		"datasetId": datasetID,
		"limit":     limit,
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		DatasetPreview *PreviewSample `json:"datasetPreview"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode preview for dataset %s: %w", datasetID, err)
	}
	if decoded.DatasetPreview == nil {
		return nil, fmt.Errorf("backend returned no preview for dataset %s", datasetID)
	}

	return decoded.DatasetPreview, nil
}
