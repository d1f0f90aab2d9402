package versioncheck

import "github.com/obentoo/bakecheck/internal/bakefile"

// Change records one rewritten variable default.
type Change struct {
	Name string
	Old  string
	New  string
}

// UpdateOptions controls which outcomes are eligible for rewriting.
type UpdateOptions struct {
	// IncludeUnknown also rewrites unknown outcomes that carry a latest
	// version. CheckOne never sets Latest on failure, so this only affects
	// outcomes assembled elsewhere.
	IncludeUnknown bool
}

// eligible reports whether an outcome should be written back.
func (o UpdateOptions) eligible(out Outcome) bool {
	if !out.HasLatest() {
		return false
	}
	switch out.Status {
	case StatusOutdated:
		return true
	case StatusUnknown:
		return o.IncludeUnknown
	default:
		return false
	}
}

// PlanUpdate computes the bake file text with every eligible outcome's
// default replaced by its latest version. It never touches the disk:
// preview and apply share the same result, apply just persists it.
//
// Variables missing from text, or already holding the latest value,
// produce no change.
func PlanUpdate(text string, outcomes []Outcome, opts UpdateOptions) (string, []Change) {
	updated := text
	var changes []Change

	for _, out := range outcomes {
		if !opts.eligible(out) {
			continue
		}
		next, changed := bakefile.Rewrite(updated, out.Name, out.Latest)
		if !changed {
			continue
		}
		updated = next
		changes = append(changes, Change{Name: out.Name, Old: out.Current, New: out.Latest})
	}

	return updated, changes
}
