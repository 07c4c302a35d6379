package catalog

import "github.com/metagrid-io/catalog-console/internal/graphql"

// Operation documents posted to the query backend. The backend exposes a
// relay-style connection shape for lists; everything else is plain objects.
var (
	// OpListEndpoints pages through collection endpoints.
	OpListEndpoints = graphql.Operation{
		Name: "ListEndpoints",
		Document: `query ListEndpoints($first: Int!, $after: String) {
  endpoints(first: $first, after: $after) {
    nodes {
      id
      name
      capabilities
      collection { id name disabled }
      permissions { canTriggerCollection }
    }
    pageInfo { hasNextPage hasPreviousPage startCursor endCursor }
  }
}`,
	}

	// OpListDatasets pages through cataloged datasets.
	OpListDatasets = graphql.Operation{
		Name: "ListDatasets",
		Document: `query ListDatasets($first: Int!, $after: String) {
  datasets(first: $first, after: $after) {
    nodes { id name sourceEndpointId }
    pageInfo { hasNextPage hasPreviousPage startCursor endCursor }
  }
}`,
	}

	// OpListRuns fetches the authoritative run listing for one endpoint.
	OpListRuns = graphql.Operation{
		Name: "ListRuns",
		Document: `query ListRuns($endpointId: ID!, $limit: Int!) {
  runs(endpointId: $endpointId, limit: $limit) {
    id
    status
    requestedAt
    completedAt
    error
    endpointId
  }
}`,
	}

	// OpStartRun starts a collection run against one endpoint.
	OpStartRun = graphql.Operation{
		Name: "StartCollectionRun",
		Document: `mutation StartCollectionRun($endpointId: ID!, $requestKey: String!) {
  startCollectionRun(endpointId: $endpointId, requestKey: $requestKey) {
    id
    status
    requestedAt
    completedAt
    error
    endpointId
  }
}`,
	}

	// OpPreviewDataset samples rows from one dataset.
	OpPreviewDataset = graphql.Operation{
		Name: "PreviewDataset",
		Document: `query PreviewDataset($datasetId: ID!, $limit: Int!) {
  datasetPreview(datasetId: $datasetId, limit: $limit) {
    rows
    sampledAt
  }
}`,
	}
)
