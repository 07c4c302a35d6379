package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagrid-io/catalog-console/internal/catalog"
)

func TestIndex(t *testing.T) {
	t.Parallel()

	idx := catalog.NewIndex()

	_, ok := idx.Endpoint("ep-1")
	assert.False(t, ok)

	idx.Upsert(
		&catalog.Endpoint{ID: "ep-1", Name: "warehouse"},
		&catalog.Endpoint{ID: "ep-2", Name: "legacy"},
		nil,
		&catalog.Endpoint{Name: "no-id"},
	)

	ep, ok := idx.Endpoint("ep-1")
	require.True(t, ok)
	assert.Equal(t, "warehouse", ep.Name)

	// Re-upserting replaces the existing entry.
	idx.Upsert(&catalog.Endpoint{ID: "ep-1", Name: "warehouse-v2"})
	ep, ok = idx.Endpoint("ep-1")
	require.True(t, ok)
	assert.Equal(t, "warehouse-v2", ep.Name)

	snap := idx.Snapshot()
	assert.Len(t, snap, 2, "nil and id-less endpoints are ignored")
}
