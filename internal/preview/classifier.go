// Package preview classifies whether a dataset preview is currently available.
//
// Classify is a pure function over its arguments: it reads no state besides
// the dataset and the cache snapshot it is handed, so identical inputs always
// yield identical summaries. Consumers call it on every render with the
// current cache snapshot.
package preview

import (
	"fmt"

	"github.com/metagrid-io/catalog-console/internal/catalog"
)

// Classify maps a dataset's link, capability, and cache state to a Summary.
// The first matching rule wins.
func Classify(dataset catalog.Dataset, cache Cache) Summary {
	if dataset.SourceEndpointID == "" {
		return Summary{
			Availability:  AvailabilityUnlinked,
			StatusMessage: "Dataset is not linked to a collection endpoint",
			Tone:          ToneWarn,
			CanPreview:    false,
		}
	}

	owner := cache.Endpoints[dataset.SourceEndpointID]
	if owner == nil {
		return Summary{
			Availability:  AvailabilityResolving,
			StatusMessage: "Resolving collection endpoint",
			Tone:          ToneNeutral,
			CanPreview:    true,
		}
	}

	if len(owner.Capabilities) > 0 && !owner.HasCapability(catalog.CapabilityPreview) {
		return Summary{
			Owner:         owner,
			Capabilities:  owner.Capabilities,
			Availability:  AvailabilityUnsupported,
			StatusMessage: fmt.Sprintf("Endpoint %s does not support previews", owner.Name),
			Tone:          ToneWarn,
			CanPreview:    false,
		}
	}

	if msg, ok := cache.Errors[dataset.ID]; ok && msg != "" {
		return Summary{
			Owner:         owner,
			Capabilities:  owner.Capabilities,
			Availability:  AvailabilityError,
			StatusMessage: msg,
			Tone:          ToneWarn,
			CanPreview:    true,
		}
	}

	sample := cache.Samples[dataset.ID]
	sampling := cache.Sampling[dataset.ID]

	if sample == nil && !sampling {
		return Summary{
			Owner:         owner,
			Capabilities:  owner.Capabilities,
			Availability:  AvailabilityNotRun,
			StatusMessage: "Preview has not been sampled yet",
			Tone:          ToneNeutral,
			CanPreview:    true,
		}
	}

	if sample != nil {
		return Summary{
			Owner:         owner,
			Capabilities:  owner.Capabilities,
			Rows:          sample.Rows,
			Availability:  AvailabilitySampled,
			StatusMessage: fmt.Sprintf("Sampled %d rows", len(sample.Rows)),
			Tone:          ToneInfo,
			CanPreview:    true,
			SampledAt:     sample.SampledAt,
		}
	}

	return Summary{
		Owner:         owner,
		Capabilities:  owner.Capabilities,
		Availability:  AvailabilityReady,
		StatusMessage: "Sampling preview",
		Tone:          ToneInfo,
		CanPreview:    true,
	}
}
