package versioncheck

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/obentoo/bakecheck/internal/common/output"
)

func init() {
	// Table assertions compare plain text
	output.NoColor()
}

// Canned upstream payloads
const (
	debianRelease = `Origin: Debian
Label: Debian
Suite: stable
Version: 13.2
Codename: trixie
Date: Sat, 15 Nov 2025 10:07:51 UTC
`

	rustChannelManifest = `manifest-version = "2"
date = "2025-12-11"

[pkg.cargo]
version = "0.93.0 (083ac5135 2025-12-03)"

[pkg.rust]
version = "1.92.0 (ded5c06cf 2025-12-08)"

[pkg.rust.target.x86_64-unknown-linux-gnu]
available = true
`

	goVersion = "go1.25.5\ntime 2025-12-02T17:24:13Z\n"

	nodeIndex = `[
  {"version": "v25.2.1", "lts": false},
  {"version": "v24.12.0", "lts": "Krypton"},
  {"version": "v24.9.0", "lts": false},
  {"version": "v22.21.1", "lts": "Jod"}
]`

	pythonListing = `<html>
<head><title>Index of /ftp/python/</title></head>
<body>
<h1>Index of /ftp/python/</h1><hr><pre><a href="../">../</a>
<a href="3.12.12/">3.12.12/</a>                                          09-Oct-2025 14:33       -
<a href="3.13.0/">3.13.0/</a>                                           07-Oct-2024 08:30       -
<a href="3.13.9/">3.13.9/</a>                                           14-Oct-2025 13:25       -
<a href="3.13.10/">3.13.10/</a>                                          02-Dec-2025 19:01       -
<a href="3.14.2/">3.14.2/</a>                                           05-Dec-2025 16:30       -
<a href="3.15.0a2/">3.15.0a2/</a>                                         19-Nov-2025 12:00       -
<a href="index-windows.json">index-windows.json</a>                                06-Dec-2025 00:00   81234
</pre><hr></body>
</html>
`

	sdkmanJavaTable = `================================================================================
Available Java Versions for Linux 64bit
================================================================================
 Vendor        | Use | Version      | Dist    | Status     | Identifier
--------------------------------------------------------------------------------
 Corretto      |     | 25.0.1       | amzn    |            | 25.0.1-amzn
               |     | 21.0.10      | amzn    |            | 21.0.10-amzn
 Temurin       |     | 25.0.1       | tem     |            | 25.0.1-tem
               |     | 21.0.9       | tem     |            | 21.0.9-tem
               |     | 21.0.8       | tem     | installed  | 21.0.8-tem
               |     | 17.0.17      | tem     |            | 17.0.17-tem
================================================================================
Omit Identifier to install default version 21.0.9-tem:
    $ sdk install java
================================================================================
`
)

// githubReleases maps owner/repo to the tag of its latest release
var githubReleases = map[string]string{
	"oven-sh/bun":         "bun-v1.3.5",
	"astral-sh/uv":        "0.9.18",
	"sdkman/sdkman-cli":   "5.20.0",
	"duckdb/duckdb":       "v1.4.3",
	"anomalyco/opencode":  "v1.0.150",
	"hashicorp/terraform": "v1.14.2",
}

const rustupTags = `[{"name": "1.28.2"}, {"name": "1.28.1"}, {"name": "1.27.1"}]`

// Upstream paths served by newUpstream
const (
	pathDebian = "/debian/dists/stable/Release"
	pathRust   = "/dist/channel-rust-stable.toml"
	pathGo     = "/VERSION"
	pathNode   = "/dist/index.json"
	pathPython = "/ftp/python/"
	pathJava   = "/sdkman/candidates/java/linuxx64/versions/list"
	pathGitHub = "/gh"
)

// upstream is a local stand-in for every upstream a tracker talks to
type upstream struct {
	*httptest.Server
}

// newUpstream starts a server answering with the canned payloads.
// overrides replace the handler of individual paths.
func newUpstream(t *testing.T, overrides map[string]http.HandlerFunc) *upstream {
	t.Helper()

	handlers := map[string]http.HandlerFunc{
		pathDebian: text(debianRelease),
		pathRust:   text(rustChannelManifest),
		pathGo:     text(goVersion),
		pathNode:   text(nodeIndex),
		pathPython: text(pythonListing),
		pathJava: func(w http.ResponseWriter, r *http.Request) {
			if !r.URL.Query().Has("installed") {
				http.Error(w, "installed is required", http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, sdkmanJavaTable)
		},
		pathGitHub + "/repos/rust-lang/rustup/tags": text(rustupTags),
	}
	for repo, tag := range githubReleases {
		handlers[pathGitHub+"/repos/"+repo+"/releases/latest"] = text(fmt.Sprintf(`{"tag_name": %q}`, tag))
	}
	for path, h := range overrides {
		handlers[path] = h
	}

	mux := http.NewServeMux()
	for path, h := range handlers {
		mux.HandleFunc(path, h)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &upstream{Server: server}
}

// client returns an HTTP client bound to the test server
func (u *upstream) client(timeout time.Duration) *RetryableHTTPClient {
	cfg := DefaultRetryConfig()
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	client := NewRetryableHTTPClientWithConfig(cfg)
	client.SetHTTPClient(u.Client())
	client.SetGitHubAPIURL(u.URL + pathGitHub)
	return client
}

// endpoints points every default tracker at the test server
func (u *upstream) endpoints() Endpoints {
	return Endpoints{
		GitHubAPI:     u.URL + pathGitHub,
		DebianRelease: u.URL + pathDebian,
		RustChannel:   u.URL + pathRust,
		GoVersion:     u.URL + pathGo,
		NodeIndex:     u.URL + pathNode,
		PythonFTP:     u.URL + pathPython,
		SDKMANAPI:     u.URL + "/sdkman",
	}
}

// text returns a handler that writes body
func text(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}
}

// hang blocks until the client gives up
func hang(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-time.After(5 * time.Second):
	}
}
