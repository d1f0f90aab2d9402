package versioncheck

import (
	"regexp"
	"strconv"
	"strings"
)

// Status is the result of comparing a pinned value against upstream.
type Status string

const (
	// StatusOK means the pin matches the latest upstream version
	StatusOK Status = "ok"
	// StatusOutdated means the pin differs from the latest upstream version
	StatusOutdated Status = "outdated"
	// StatusUnknown means the latest version could not be determined
	StatusUnknown Status = "unknown"
)

// Label returns the upper-case word used in table output.
func (s Status) Label() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusOutdated:
		return "OUTDATED"
	default:
		return "UNKNOWN"
	}
}

// dottedIntsPattern matches versions made solely of digit groups separated by dots.
var dottedIntsPattern = regexp.MustCompile(`^\d+(?:\.\d+)*$`)

// ParseInts parses a dotted-integer version such as "1.25.5" into its
// components. It returns nil when the string isn't purely dotted digits.
func ParseInts(version string) []int {
	if !dottedIntsPattern.MatchString(version) {
		return nil
	}
	parts := strings.Split(version, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			// Digit groups too large for int are not comparable
			return nil
		}
		nums[i] = n
	}
	return nums
}

// CompareInts orders two integer tuples component-wise.
// A shorter tuple that is a prefix of a longer one sorts first.
// Returns -1, 0 or 1.
func CompareInts(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// equalInts reports whether two tuples are identical, including length.
func equalInts(a, b []int) bool {
	return len(a) == len(b) && CompareInts(a, b) == 0
}

// stripPrefixes removes the first matching prefix from s.
func stripPrefixes(s string, prefixes ...string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return s[len(p):]
		}
	}
	return s
}

// Compare decides the status of a pinned value against the latest upstream
// version. An empty latest means upstream could not be resolved.
//
// A leading "v" is ignored on both sides. When both values are dotted
// integers they are compared as tuples, so "2.00" equals "2.0" but "2.0"
// differs from "2.0.0". Anything else is compared as plain strings.
func Compare(current, latest string) Status {
	if latest == "" {
		return StatusUnknown
	}

	cur := stripPrefixes(current, "v")
	lat := stripPrefixes(latest, "v")

	curNums := ParseInts(cur)
	latNums := ParseInts(lat)
	if curNums != nil && latNums != nil {
		if equalInts(curNums, latNums) {
			return StatusOK
		}
		return StatusOutdated
	}

	if cur == lat {
		return StatusOK
	}
	return StatusOutdated
}
