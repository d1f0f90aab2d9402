package versioncheck

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// DefaultDebianReleaseURL is the stable distribution's Release manifest.
const DefaultDebianReleaseURL = "https://deb.debian.org/debian/dists/stable/Release"

// codenamePattern locates the Codename field in a Release manifest.
var codenamePattern = regexp.MustCompile(`(?m)^Codename:\s*(\S+)\s*$`)

// DebianResolver resolves the slim image tag of the current Debian stable release.
type DebianResolver struct {
	Client *RetryableHTTPClient
	// URL is the Release manifest location
	URL string
}

// Source implements Resolver.
func (r *DebianResolver) Source() string { return "deb.debian.org" }

// Latest returns "<codename>-slim" for the current stable codename.
func (r *DebianResolver) Latest(ctx context.Context, _ string) (string, error) {
	url := r.URL
	if url == "" {
		url = DefaultDebianReleaseURL
	}

	text, err := r.Client.FetchText(ctx, url)
	if err != nil {
		return "", err
	}

	m := codenamePattern.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("%w: could not parse Debian stable codename", ErrUnexpectedResponse)
	}
	return strings.TrimSpace(m[1]) + "-slim", nil
}

// Floats implements Floating: "stable" tags follow the release automatically.
func (r *DebianResolver) Floats(current string) (string, bool) {
	if current == "stable" || current == "stable-slim" {
		return "tracks stable", true
	}
	return "", false
}
