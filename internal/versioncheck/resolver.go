package versioncheck

import (
	"context"
	"errors"
	"regexp"
)

// Error variables for resolver errors
var (
	// ErrUnexpectedResponse is returned when an upstream payload has an unexpected shape
	ErrUnexpectedResponse = errors.New("unexpected upstream response")
	// ErrNoMatchingVersion is returned when upstream lists no version matching the pin
	ErrNoMatchingVersion = errors.New("no matching upstream version")
	// ErrUnrecognizedFormat is returned when the pinned value can't be interpreted
	ErrUnrecognizedFormat = errors.New("unrecognized version format")
)

// Resolver finds the latest upstream version for one tracked tool.
type Resolver interface {
	// Source is the short upstream label shown in reports.
	Source() string
	// Latest returns the newest upstream version relevant to current.
	// Some resolvers use current to narrow the search (same major, same
	// minor, same distribution).
	Latest(ctx context.Context, current string) (string, error)
}

// Floating is implemented by resolvers whose pins may deliberately
// float. A floating pin is always reported ok with an explanatory note.
type Floating interface {
	Floats(current string) (note string, ok bool)
}

// Tracker binds a bake variable name to the resolver that checks it.
type Tracker struct {
	// Name is the bake variable name (e.g. GO_VERSION)
	Name string
	// Resolver looks up the latest upstream version
	Resolver Resolver
}

// Outcome is the immutable result of checking one variable.
type Outcome struct {
	// Name is the bake variable name
	Name string
	// Current is the resolved pinned value
	Current string
	// Latest is the upstream version; empty when it could not be determined
	Latest string
	// Status is ok, outdated or unknown
	Status Status
	// Source is the upstream label
	Source string
	// Note carries diagnostics or policy explanations; may be empty
	Note string
}

// HasLatest reports whether the upstream version was determined.
func (o Outcome) HasLatest() bool {
	return o.Latest != ""
}

// versionIdentPattern splits "<dotted-numeric>[-<suffix>]" identifiers
// such as "21.0.9-tem".
var versionIdentPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)(?:-([A-Za-z0-9]+))?$`)

// splitIdentifier returns the numeric part and optional suffix of an
// identifier like "21.0.9-tem". ok is false when the pattern doesn't match.
func splitIdentifier(ident string) (num, suffix string, ok bool) {
	m := versionIdentPattern.FindStringSubmatch(ident)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
