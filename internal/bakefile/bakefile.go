// Package bakefile reads and rewrites variable defaults in docker-bake.hcl files.
//
// Only blocks of the form
//
//	variable "NAME" {
//	  default = "VALUE"
//	}
//
// are recognized. Everything else in the file is ignored on read and left
// byte-for-byte untouched on rewrite.
package bakefile

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
)

// Error variables for bake file errors
var (
	// ErrReadFile is returned when the bake file cannot be read
	ErrReadFile = errors.New("could not read bake file")
	// ErrMissingVariable is returned when a required variable is neither in the file nor the environment
	ErrMissingVariable = errors.New("missing variable")
)

// variablePattern matches a variable block holding a single quoted default.
// Quotes are literal; no escape processing is done on the value.
var variablePattern = regexp.MustCompile(`variable\s+"([^"]+)"\s*\{\s*default\s*=\s*"([^"]*)"\s*\}`)

// Variables holds the variable defaults declared in a bake file.
type Variables struct {
	// Defaults maps variable name to its declared default
	Defaults map[string]string
	// order keeps names in first-seen file order
	order []string
	// lookupEnv resolves environment overrides (os.LookupEnv by default)
	lookupEnv func(string) (string, bool)
}

// Parse extracts all variable defaults from bake file text.
// Parsing never fails: blocks that don't match the pattern are skipped.
// When a name repeats, the later default wins.
func Parse(text string) *Variables {
	v := &Variables{
		Defaults:  make(map[string]string),
		lookupEnv: os.LookupEnv,
	}

	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		name, value := m[1], m[2]
		if _, seen := v.Defaults[name]; !seen {
			v.order = append(v.order, name)
		}
		v.Defaults[name] = value
	}

	return v
}

// Load reads the bake file at path and parses its variables.
// It returns the raw text alongside the parsed variables so callers can
// rewrite the same bytes later.
func Load(path string) (string, *Variables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w %q: %v", ErrReadFile, path, err)
	}
	text := string(data)
	return text, Parse(text), nil
}

// WithLookupEnv replaces the environment lookup used by Resolve.
// Passing nil disables environment overrides entirely.
func (v *Variables) WithLookupEnv(fn func(string) (string, bool)) *Variables {
	if fn == nil {
		fn = func(string) (string, bool) { return "", false }
	}
	v.lookupEnv = fn
	return v
}

// Resolve returns the effective value of a variable.
// A non-empty environment variable of the same name overrides the file
// default, mirroring `docker buildx bake` behavior.
func (v *Variables) Resolve(name string) (string, bool) {
	if v.lookupEnv != nil {
		if envVal, ok := v.lookupEnv(name); ok && envVal != "" {
			return envVal, true
		}
	}
	value, ok := v.Defaults[name]
	return value, ok
}

// Require is like Resolve but returns ErrMissingVariable when the
// variable has no value anywhere.
func (v *Variables) Require(name string) (string, error) {
	value, ok := v.Resolve(name)
	if !ok {
		return "", fmt.Errorf("%w %s in bake file", ErrMissingVariable, name)
	}
	return value, nil
}

// Names returns the declared variable names in file order.
func (v *Variables) Names() []string {
	names := make([]string, len(v.order))
	copy(names, v.order)
	return names
}

// SortedNames returns the declared variable names sorted alphabetically.
func (v *Variables) SortedNames() []string {
	names := v.Names()
	sort.Strings(names)
	return names
}

// Len returns the number of declared variables.
func (v *Variables) Len() int {
	return len(v.Defaults)
}
