package preview

import (
	"time"

	"github.com/metagrid-io/catalog-console/internal/catalog"
)

// Availability classifies whether and why a dataset preview is currently
// available.
type Availability string

const (
	// AvailabilityUnlinked means the dataset declares no source endpoint
	AvailabilityUnlinked Availability = "unlinked"

	// AvailabilityResolving means the endpoint record has not resolved yet
	AvailabilityResolving Availability = "resolving"

	// AvailabilityUnsupported means the endpoint does not support previews
	AvailabilityUnsupported Availability = "unsupported"

	// AvailabilityError means the last preview attempt failed
	AvailabilityError Availability = "error"

	// AvailabilityNotRun means no preview has been sampled yet
	AvailabilityNotRun Availability = "not_run"

	// AvailabilityReady means a preview can be sampled and one is in flight
	AvailabilityReady Availability = "ready"

	// AvailabilitySampled means cached preview rows exist
	AvailabilitySampled Availability = "sampled"
)

// Tone hints how the status message should be presented
type Tone string

const (
	// ToneInfo is for positive states
	ToneInfo Tone = "info"

	// ToneNeutral is for transient or empty states
	ToneNeutral Tone = "neutral"

	// ToneWarn is for states that block or degrade previews
	ToneWarn Tone = "warn"
)

// Summary is the classification result for one dataset. It is derived purely
// from the classifier's inputs and never independently stored.
type Summary struct {
	Owner         *catalog.Endpoint
	Capabilities  []string
	Rows          []map[string]any
	Availability  Availability
	StatusMessage string
	Tone          Tone
	CanPreview    bool
	SampledAt     time.Time
}

// Cache is a snapshot of the locally cached preview state the classifier
// reads. All maps are keyed as noted; a nil map reads as empty.
type Cache struct {
	// Endpoints is the local endpoint lookup, keyed by endpoint id.
	Endpoints map[string]*catalog.Endpoint

	// Samples holds cached preview rows, keyed by dataset id.
	Samples map[string]*catalog.PreviewSample

	// Errors holds the last preview error message, keyed by dataset id.
	Errors map[string]string

	// Sampling marks datasets with an in-flight preview, keyed by dataset id.
	Sampling map[string]bool
}
