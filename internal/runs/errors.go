package runs

// Precondition reasons surfaced by Trigger before any network call
const (
	// ReasonUnknownResource means the endpoint is not in the local lookup
	ReasonUnknownResource = "unknown-resource"

	// ReasonPermissionDenied means the caller may not trigger collection
	ReasonPermissionDenied = "permission-denied"

	// ReasonCapabilityMissing means the endpoint does not declare the
	// metadata capability
	ReasonCapabilityMissing = "capability-missing"

	// ReasonCollectionDisabled means the owning collection is
	// administratively disabled
	ReasonCollectionDisabled = "collection-disabled"
)

// PreconditionError is a trigger-time validation failure. It is raised
// synchronously, before any network call.
type PreconditionError struct {
	ResourceID string
	Reason     string
	Message    string
}

func (e *PreconditionError) Error() string {
	return e.Message
}
