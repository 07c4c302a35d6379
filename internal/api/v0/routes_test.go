package v0_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	v0 "github.com/metagrid-io/catalog-console/internal/api/v0"
	"github.com/metagrid-io/catalog-console/internal/catalog"
	"github.com/metagrid-io/catalog-console/internal/catalog/mocks"
	"github.com/metagrid-io/catalog-console/internal/graphql"
	"github.com/metagrid-io/catalog-console/internal/pager"
	"github.com/metagrid-io/catalog-console/internal/runs"
)

type fixture struct {
	svc        *mocks.MockService
	index      *catalog.Index
	reconciler *runs.Reconciler
	handler    http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	index := catalog.NewIndex()
	reconciler := runs.New(svc, index)

	return &fixture{
		svc:        svc,
		index:      index,
		reconciler: reconciler,
		handler:    v0.Router(svc, reconciler, index, 25),
	}
}

func (f *fixture) request(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestListEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("returns a page and warms the index", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.svc.EXPECT().
			ListEndpoints(gomock.Any(), 25, "").
			Return(pager.Connection[*catalog.Endpoint]{
				Nodes: []*catalog.Endpoint{
					{ID: "ep-1", Name: "warehouse"},
				},
				PageInfo: pager.PageInfo{HasNextPage: true, EndCursor: "c1"},
			}, nil)

		rec := f.request(http.MethodGet, "/endpoints")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var page v0.PageResponse[*catalog.Endpoint]
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		require.Len(t, page.Items, 1)
		assert.Equal(t, "ep-1", page.Items[0].ID)
		assert.True(t, page.PageInfo.HasNextPage)

		_, ok := f.index.Endpoint("ep-1")
		assert.True(t, ok, "listed endpoints must land in the session index")
	})

	t.Run("passes limit and cursor through", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.svc.EXPECT().
			ListEndpoints(gomock.Any(), 5, "cursor-3").
			Return(pager.Connection[*catalog.Endpoint]{}, nil)

		rec := f.request(http.MethodGet, "/endpoints?limit=5&cursor=cursor-3")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not configured maps to 503", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.svc.EXPECT().
			ListEndpoints(gomock.Any(), 25, "").
			Return(pager.Connection[*catalog.Endpoint]{}, graphql.ErrNotConfigured)

		rec := f.request(http.MethodGet, "/endpoints")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp v0.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "query backend not configured", resp.Error)
	})

	t.Run("backend failure maps to 502", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.svc.EXPECT().
			ListEndpoints(gomock.Any(), 25, "").
			Return(pager.Connection[*catalog.Endpoint]{}, errors.New("backend exploded"))

		rec := f.request(http.MethodGet, "/endpoints")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestListDatasets(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.svc.EXPECT().
		ListDatasets(gomock.Any(), 25, "").
		Return(pager.Connection[*catalog.Dataset]{
			Nodes: []*catalog.Dataset{
				{ID: "ds-1", Name: "orders", SourceEndpointID: "ep-1"},
			},
		}, nil)

	rec := f.request(http.MethodGet, "/datasets")
	require.Equal(t, http.StatusOK, rec.Code)

	var page v0.PageResponse[*catalog.Dataset]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "orders", page.Items[0].Name)
}

func TestGetRunStatus(t *testing.T) {
	t.Parallel()

	t.Run("reconciles the listing", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.svc.EXPECT().
			ListRuns(gomock.Any(), "ep-1").
			Return([]*catalog.RunRecord{
				{ID: "run-1", Status: catalog.RunStatusSucceeded, RequestedAt: time.Now(), ResourceID: "ep-1"},
			}, nil)

		rec := f.request(http.MethodGet, "/runs/ep-1")
		require.Equal(t, http.StatusOK, rec.Code)

		var run catalog.RunRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
		assert.Equal(t, "run-1", run.ID)
		assert.Equal(t, catalog.RunStatusSucceeded, run.Status)
	})

	t.Run("no runs is a 404", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.svc.EXPECT().
			ListRuns(gomock.Any(), "ep-1").
			Return(nil, nil)

		rec := f.request(http.MethodGet, "/runs/ep-1")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("listing failure maps to 502", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.svc.EXPECT().
			ListRuns(gomock.Any(), "ep-1").
			Return(nil, errors.New("backend exploded"))

		rec := f.request(http.MethodGet, "/runs/ep-1")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestTriggerRun(t *testing.T) {
	t.Parallel()

	triggerable := &catalog.Endpoint{
		ID:           "ep-1",
		Name:         "warehouse",
		Capabilities: []string{catalog.CapabilityMetadata},
		Permissions:  catalog.EndpointPermissions{CanTriggerCollection: true},
	}

	t.Run("accepted trigger returns 202", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.index.Upsert(triggerable)
		f.svc.EXPECT().
			StartRun(gomock.Any(), "ep-1", gomock.Any()).
			Return(&catalog.RunRecord{
				ID:         "run-1",
				Status:     catalog.RunStatusSkipped,
				ResourceID: "ep-1",
			}, nil)

		rec := f.request(http.MethodPost, "/runs/ep-1")
		require.Equal(t, http.StatusAccepted, rec.Code)

		var run catalog.RunRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
		assert.Equal(t, "run-1", run.ID)
	})

	t.Run("run status converges after the request ends", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.index.Upsert(triggerable)
		f.svc.EXPECT().
			StartRun(gomock.Any(), "ep-1", gomock.Any()).
			Return(&catalog.RunRecord{
				ID:         "run-9",
				Status:     catalog.RunStatusQueued,
				ResourceID: "ep-1",
			}, nil)
		f.svc.EXPECT().
			ListRuns(gomock.Any(), "ep-1").
			DoAndReturn(func(ctx context.Context, _ string) ([]*catalog.RunRecord, error) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				return []*catalog.RunRecord{{
					ID:          "run-9",
					Status:      catalog.RunStatusSucceeded,
					RequestedAt: time.Now(),
					ResourceID:  "ep-1",
				}}, nil
			}).
			Times(1)

		// The server cancels the request context once the response is
		// written; the completion poll must not die with it.
		ctx, cancel := context.WithCancel(context.Background())
		req := httptest.NewRequest(http.MethodPost, "/runs/ep-1", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		cancel()
		require.Equal(t, http.StatusAccepted, rec.Code)

		f.reconciler.Wait()

		override, ok := f.reconciler.Record("ep-1")
		require.True(t, ok)
		assert.Equal(t, catalog.RunStatusSucceeded, override.Status)
	})

	t.Run("unknown endpoint returns 404", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		rec := f.request(http.MethodPost, "/runs/ep-missing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("permission denied returns 403", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.index.Upsert(&catalog.Endpoint{ID: "ep-1", Name: "warehouse"})

		rec := f.request(http.MethodPost, "/runs/ep-1")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("disabled collection returns 409", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.index.Upsert(&catalog.Endpoint{
			ID:           "ep-1",
			Name:         "warehouse",
			Capabilities: []string{catalog.CapabilityMetadata},
			Permissions:  catalog.EndpointPermissions{CanTriggerCollection: true},
			Collection:   &catalog.CollectionRef{ID: "col-1", Name: "nightly", Disabled: true},
		})

		rec := f.request(http.MethodPost, "/runs/ep-1")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("start failure returns 502", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.index.Upsert(triggerable)
		f.svc.EXPECT().
			StartRun(gomock.Any(), "ep-1", gomock.Any()).
			Return(nil, errors.New("backend exploded"))

		rec := f.request(http.MethodPost, "/runs/ep-1")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestGetRunOverrides(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.index.Upsert(&catalog.Endpoint{
		ID:           "ep-1",
		Name:         "warehouse",
		Capabilities: []string{catalog.CapabilityMetadata},
		Permissions:  catalog.EndpointPermissions{CanTriggerCollection: true},
	})
	f.svc.EXPECT().
		StartRun(gomock.Any(), "ep-1", gomock.Any()).
		Return(&catalog.RunRecord{ID: "run-1", Status: catalog.RunStatusSkipped, ResourceID: "ep-1"}, nil)

	trigger := f.request(http.MethodPost, "/runs/ep-1")
	require.Equal(t, http.StatusAccepted, trigger.Code)

	rec := f.request(http.MethodGet, "/runs")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap map[string]*catalog.RunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Contains(t, snap, "ep-1")
	assert.Equal(t, "run-1", snap["ep-1"].ID)
}

func TestHealthRouter(t *testing.T) {
	t.Parallel()

	handler := v0.HealthRouter()

	t.Run("health", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})

	t.Run("version", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var info map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
		assert.Contains(t, info, "version")
	})
}
