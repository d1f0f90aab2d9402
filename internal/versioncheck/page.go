package versioncheck

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// PageResolver resolves a version by fetching a page and running an
// extractor over its body. It covers upstreams with neither a GitHub
// repository nor a dedicated resolver.
type PageResolver struct {
	Client *RetryableHTTPClient
	// URL is fetched with a plain GET
	URL string
	// Extractor pulls the version out of the body
	Extractor Extractor
	// Label is the report source (default: the URL host)
	Label string
	// Strip lists prefixes to remove; the first match wins
	Strip []string
	// AddV re-adds a "v" prefix after stripping
	AddV bool
}

// Source implements Resolver.
func (r *PageResolver) Source() string {
	if r.Label != "" {
		return r.Label
	}
	if u, err := url.Parse(r.URL); err == nil && u.Host != "" {
		return u.Host
	}
	return r.URL
}

// Latest implements Resolver.
func (r *PageResolver) Latest(ctx context.Context, _ string) (string, error) {
	body, err := r.Client.fetch(ctx, r.URL, nil)
	if err != nil {
		return "", err
	}

	raw, err := r.Extractor.Extract(body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", r.URL, err)
	}

	latest := stripPrefixes(raw, r.Strip...)
	if latest == "" {
		return "", fmt.Errorf("%s: %w: %q is empty after stripping", r.URL, ErrNothingExtracted, raw)
	}
	if r.AddV && !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}
	return latest, nil
}
