package versioncheck

import (
	"context"
	"fmt"
	"regexp"

	"github.com/BurntSushi/toml"
)

// DefaultRustChannelURL is the stable channel manifest.
const DefaultRustChannelURL = "https://static.rust-lang.org/dist/channel-rust-stable.toml"

// semverTriplePattern extracts "1.83.0" out of "1.83.0 (90b35a623 2024-11-26)".
var semverTriplePattern = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

// rustChannel is the subset of the channel manifest we decode
type rustChannel struct {
	Pkg map[string]struct {
		Version string `toml:"version"`
	} `toml:"pkg"`
}

// RustResolver resolves the current stable Rust toolchain version.
type RustResolver struct {
	Client *RetryableHTTPClient
	// URL is the channel manifest location
	URL string
}

// Source implements Resolver.
func (r *RustResolver) Source() string { return "static.rust-lang.org" }

// Latest decodes pkg.rust.version from the channel manifest.
func (r *RustResolver) Latest(ctx context.Context, _ string) (string, error) {
	url := r.URL
	if url == "" {
		url = DefaultRustChannelURL
	}

	text, err := r.Client.FetchText(ctx, url)
	if err != nil {
		return "", err
	}
	return parseRustChannel(text)
}

// parseRustChannel extracts the rust package version from manifest text.
func parseRustChannel(text string) (string, error) {
	var channel rustChannel
	if _, err := toml.Decode(text, &channel); err != nil {
		return "", fmt.Errorf("%w: failed to parse channel manifest: %v", ErrUnexpectedResponse, err)
	}

	pkg, ok := channel.Pkg["rust"]
	if !ok || pkg.Version == "" {
		return "", fmt.Errorf("%w: pkg.rust.version not found in channel manifest", ErrUnexpectedResponse)
	}

	m := semverTriplePattern.FindStringSubmatch(pkg.Version)
	if m == nil {
		return "", fmt.Errorf("%w: could not parse rust version from %q", ErrUnexpectedResponse, pkg.Version)
	}
	return m[1], nil
}
