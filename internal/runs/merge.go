package runs

import "github.com/metagrid-io/catalog-console/internal/catalog"

// Merge picks the more credible of an optimistic override and an
// authoritative listing candidate for the same resource. The record with the
// strictly later RequestedAt wins; on equal timestamps the terminal record
// beats the non-terminal one, and the override is kept when neither tie-break
// applies. Merge is pure: it never mutates its arguments.
func Merge(override, candidate *catalog.RunRecord) *catalog.RunRecord {
	if override == nil {
		return candidate
	}
	if candidate == nil {
		return override
	}

	switch {
	case candidate.RequestedAt.After(override.RequestedAt):
		return candidate
	case candidate.RequestedAt.Equal(override.RequestedAt):
		if candidate.Status.IsTerminal() && !override.Status.IsTerminal() {
			return candidate
		}
		return override
	default:
		return override
	}
}

// supersedes reports whether a listing candidate makes the override
// redundant: a terminal candidate at or after the override's own timestamp is
// the authoritative end of the story.
func supersedes(candidate, override *catalog.RunRecord) bool {
	if candidate == nil || override == nil {
		return false
	}
	return candidate.Status.IsTerminal() && !candidate.RequestedAt.Before(override.RequestedAt)
}
