package versioncheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/obentoo/bakecheck/internal/common/logger"
)

// ValueResolver supplies the pinned value of a variable.
// *bakefile.Variables implements it.
type ValueResolver interface {
	Require(name string) (string, error)
}

// Checker runs every tracker against the pinned values of a bake file.
type Checker struct {
	// trackers are checked in order
	trackers []Tracker
	// httpClient handles HTTP requests for the default trackers
	httpClient *RetryableHTTPClient
	// endpoints overrides default upstream locations
	endpoints Endpoints
	// extra trackers are appended after the defaults
	extra []Tracker
}

// CheckerOption is a functional option for configuring Checker
type CheckerOption func(*Checker) error

// WithHTTPClient sets a custom HTTP client for the default trackers
func WithHTTPClient(client *RetryableHTTPClient) CheckerOption {
	return func(c *Checker) error {
		c.httpClient = client
		return nil
	}
}

// WithEndpoints overrides upstream locations for the default trackers
func WithEndpoints(ep Endpoints) CheckerOption {
	return func(c *Checker) error {
		c.endpoints = ep
		return nil
	}
}

// WithTrackers replaces the default trackers entirely
func WithTrackers(trackers ...Tracker) CheckerOption {
	return func(c *Checker) error {
		for _, t := range trackers {
			if t.Name == "" || t.Resolver == nil {
				return fmt.Errorf("invalid tracker %q: name and resolver are required", t.Name)
			}
		}
		c.trackers = trackers
		return nil
	}
}

// WithExtraTrackers appends trackers after the defaults
func WithExtraTrackers(trackers ...Tracker) CheckerOption {
	return func(c *Checker) error {
		for _, t := range trackers {
			if t.Name == "" || t.Resolver == nil {
				return fmt.Errorf("invalid tracker %q: name and resolver are required", t.Name)
			}
		}
		c.extra = append(c.extra, trackers...)
		return nil
	}
}

// NewChecker creates a checker. Without WithTrackers it checks the
// default set of bake variables.
func NewChecker(opts ...CheckerOption) (*Checker, error) {
	checker := &Checker{}

	for _, opt := range opts {
		if err := opt(checker); err != nil {
			return nil, fmt.Errorf("failed to apply checker option: %w", err)
		}
	}

	if checker.httpClient == nil {
		checker.httpClient = NewRetryableHTTPClient()
	}

	if checker.trackers == nil {
		checker.trackers = DefaultTrackers(checker.httpClient, checker.endpoints)
	}
	checker.trackers = append(checker.trackers, checker.extra...)

	return checker, nil
}

// Trackers returns the trackers in check order.
func (c *Checker) Trackers() []Tracker {
	return c.trackers
}

// Run checks every tracked variable sequentially.
//
// All pinned values are resolved before any network request, so a
// missing variable aborts the run immediately. Upstream failures never
// abort: they become unknown outcomes.
func (c *Checker) Run(ctx context.Context, values ValueResolver) ([]Outcome, error) {
	currents := make([]string, len(c.trackers))
	for i, t := range c.trackers {
		v, err := values.Require(t.Name)
		if err != nil {
			return nil, err
		}
		currents[i] = v
	}

	outcomes := make([]Outcome, 0, len(c.trackers))
	for i, t := range c.trackers {
		outcomes = append(outcomes, CheckOne(ctx, t, currents[i]))
	}
	return outcomes, nil
}

// CheckOne resolves and compares a single variable.
// Errors from the resolver are contained in an unknown outcome.
func CheckOne(ctx context.Context, t Tracker, current string) Outcome {
	out := Outcome{
		Name:    t.Name,
		Current: current,
		Source:  t.Resolver.Source(),
	}

	logger.Debug("checking %s=%s against %s", t.Name, current, out.Source)

	latest, err := t.Resolver.Latest(ctx, current)
	if err == nil && strings.TrimSpace(latest) == "" {
		err = fmt.Errorf("%w: %s returned an empty version", ErrUnexpectedResponse, out.Source)
	}
	if err != nil {
		logger.Debug("%s: %v", t.Name, err)
		out.Status = StatusUnknown
		out.Note = err.Error()
		return out
	}
	out.Latest = latest

	if f, ok := t.Resolver.(Floating); ok {
		if note, floats := f.Floats(current); floats {
			out.Status = StatusOK
			out.Note = note
			return out
		}
	}

	out.Status = Compare(current, latest)
	logger.Debug("%s: latest %s (%s)", t.Name, latest, out.Status)
	return out
}

// AnyNotOK reports whether any outcome is outdated or unknown.
func AnyNotOK(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o.Status != StatusOK {
			return true
		}
	}
	return false
}
