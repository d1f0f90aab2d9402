package versioncheck

import (
	"context"
	"fmt"
	"strings"
)

// DefaultGoVersionURL returns the current Go release as plain text.
const DefaultGoVersionURL = "https://go.dev/VERSION?m=text"

// GoResolver resolves the latest Go release.
type GoResolver struct {
	Client *RetryableHTTPClient
	// URL is the plaintext version endpoint
	URL string
}

// Source implements Resolver.
func (r *GoResolver) Source() string { return "go.dev" }

// Latest reads the first line ("go1.25.5") and strips the "go" prefix.
func (r *GoResolver) Latest(ctx context.Context, _ string) (string, error) {
	url := r.URL
	if url == "" {
		url = DefaultGoVersionURL
	}

	text, err := r.Client.FetchText(ctx, url)
	if err != nil {
		return "", err
	}

	first, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	first = strings.TrimSpace(first)
	version := strings.TrimPrefix(first, "go")
	if version == first || version == "" {
		return "", fmt.Errorf("%w: unexpected go VERSION response %q", ErrUnexpectedResponse, first)
	}
	return version, nil
}
