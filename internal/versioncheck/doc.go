// Package versioncheck compares the version pins of a docker-bake.hcl file
// against their upstream sources.
//
// The package implements:
//   - A retrying HTTP client with per-request timeouts
//   - One resolver per upstream (GitHub releases and tags, Debian, Rust,
//     Go, Node.js, Python, SDKMAN)
//   - Page resolvers that extract a version with a JSON path, a regex,
//     or a CSS/XPath selector
//   - Status comparison of pinned and latest versions
//   - Update planning that rewrites outdated defaults in place
//   - Table, JSON and shell-variable reports
//
// Every lookup is a single best-effort request. A failing upstream yields
// an unknown outcome instead of aborting the run.
//
// Usage:
//
//	_, vars, err := bakefile.Load("docker-bake.hcl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	checker, err := versioncheck.NewChecker()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outcomes, err := checker.Run(ctx, vars)
package versioncheck
