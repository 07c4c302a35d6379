// Package catalog defines the domain model for the metadata catalog: collection
// endpoints, cataloged datasets, collection runs, and dataset previews.
package catalog

import "time"

// Capability names an operation a collection endpoint declares support for.
// An endpoint with an empty capability list declares no restrictions.
const (
	// CapabilityPreview allows sampling rows from datasets behind the endpoint
	CapabilityPreview = "preview"

	// CapabilityMetadata allows triggering metadata-collection runs
	CapabilityMetadata = "metadata"
)

// RunStatus represents the state of a collection run
type RunStatus string

const (
	// RunStatusQueued means the run is waiting for a worker
	RunStatusQueued RunStatus = "QUEUED"

	// RunStatusRunning means the run is executing
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded means the run completed successfully
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed means the run completed with an error
	RunStatusFailed RunStatus = "FAILED"

	// RunStatusSkipped means the backend declined to execute the run
	RunStatusSkipped RunStatus = "SKIPPED"
)

// IsTerminal reports whether the status will not change further.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed, RunStatusSkipped:
		return true
	default:
		return false
	}
}

// RunRecord is the record of one collection run against an endpoint.
// A record is immutable once its status is terminal; while QUEUED or RUNNING it
// may be replaced by a fresher record for the same endpoint.
type RunRecord struct {
	ID          string     `json:"id"`
	Status      RunStatus  `json:"status"`
	RequestedAt time.Time  `json:"requestedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
	ResourceID  string     `json:"resourceId"`
}

// CollectionRef identifies the collection an endpoint belongs to.
type CollectionRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Disabled bool   `json:"disabled"`
}

// EndpointPermissions are the caller's permissions on an endpoint, as reported
// by the backend.
type EndpointPermissions struct {
	CanTriggerCollection bool `json:"canTriggerCollection"`
}

// Endpoint is a metadata-collection endpoint.
type Endpoint struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Capabilities []string            `json:"capabilities"`
	Collection   *CollectionRef      `json:"collection,omitempty"`
	Permissions  EndpointPermissions `json:"permissions"`
}

// HasCapability reports whether the endpoint declares the named capability.
// An endpoint with an empty capability list declares no restrictions and is
// treated as supporting everything.
func (e *Endpoint) HasCapability(name string) bool {
	if len(e.Capabilities) == 0 {
		return true
	}
	for _, c := range e.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// Dataset is a cataloged dataset. SourceEndpointID is empty when the dataset
// is not linked to any collection endpoint.
type Dataset struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	SourceEndpointID string `json:"sourceEndpointId,omitempty"`
}

// PreviewSample holds sampled rows for a dataset preview.
type PreviewSample struct {
	Rows      []map[string]any `json:"rows"`
	SampledAt time.Time        `json:"sampledAt"`
}
