package versioncheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultGitHubAPIURL is the public GitHub REST API base.
const DefaultGitHubAPIURL = "https://api.github.com"

// GitHubStrategy selects which GitHub endpoint provides the latest version.
type GitHubStrategy string

const (
	// StrategyReleases uses the "latest release" endpoint
	StrategyReleases GitHubStrategy = "releases"
	// StrategyTags uses the tags list, for repos that publish no releases
	StrategyTags GitHubStrategy = "tags"
)

// GitHubResolver resolves the latest version of a GitHub-hosted tool.
type GitHubResolver struct {
	Client *RetryableHTTPClient
	// APIURL is the GitHub API base (default: https://api.github.com)
	APIURL string
	// Owner and Repo identify the repository
	Owner string
	Repo  string
	// Strategy picks releases (default) or tags
	Strategy GitHubStrategy
	// Strip lists tag prefixes to remove; the first match wins
	Strip []string
	// AddV re-adds a "v" prefix after stripping
	AddV bool
}

// githubRelease is the subset of the releases API payload we need
type githubRelease struct {
	TagName string `json:"tag_name"`
}

// githubTag is one entry of the tags API payload
type githubTag struct {
	Name string `json:"name"`
}

// Source implements Resolver.
func (r *GitHubResolver) Source() string {
	return fmt.Sprintf("github:%s/%s", r.Owner, r.Repo)
}

// Latest returns the repository's latest tag with prefixes normalized.
func (r *GitHubResolver) Latest(ctx context.Context, _ string) (string, error) {
	var (
		tag string
		err error
	)
	if r.Strategy == StrategyTags {
		tag, err = r.latestFromTags(ctx)
	} else {
		tag, err = r.latestRelease(ctx)
	}
	if err != nil {
		return "", err
	}

	latest := stripPrefixes(tag, r.Strip...)
	if latest == "" {
		return "", fmt.Errorf("%w: tag %q of %s/%s is empty after stripping", ErrUnexpectedResponse, tag, r.Owner, r.Repo)
	}
	if r.AddV && !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}
	return latest, nil
}

// apiURL returns the API base without trailing slash
func (r *GitHubResolver) apiURL() string {
	if r.APIURL == "" {
		return DefaultGitHubAPIURL
	}
	return strings.TrimSuffix(r.APIURL, "/")
}

// latestRelease queries /releases/latest and returns its tag.
func (r *GitHubResolver) latestRelease(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", r.apiURL(), r.Owner, r.Repo)

	var release githubRelease
	if err := r.Client.FetchJSON(ctx, url, &release); err != nil {
		return "", err
	}

	tag := strings.TrimSpace(release.TagName)
	if tag == "" {
		return "", fmt.Errorf("%w: missing tag_name for %s/%s", ErrUnexpectedResponse, r.Owner, r.Repo)
	}
	return tag, nil
}

// latestFromTags queries the first page of /tags and picks the newest tag.
//
// The tags API lists tags in reverse ref order, which is not strictly
// by recency, so release-shaped tags (dotted integers with at least
// major.minor) are ranked and the highest wins. When none qualify, the
// first entry is used.
func (r *GitHubResolver) latestFromTags(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/tags?per_page=100", r.apiURL(), r.Owner, r.Repo)

	var tags []githubTag
	if err := r.Client.FetchJSON(ctx, url, &tags); err != nil {
		return "", err
	}
	if len(tags) == 0 {
		return "", fmt.Errorf("%w: no tags for %s/%s", ErrUnexpectedResponse, r.Owner, r.Repo)
	}

	var (
		best    *semver.Version
		bestTag string
	)
	for _, t := range tags {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		// Dates and build numbers are single integers; releases have at
		// least major.minor and no prerelease suffix
		bare := strings.TrimPrefix(stripPrefixes(name, r.Strip...), "v")
		if len(ParseInts(bare)) < 2 {
			continue
		}
		v, err := semver.NewVersion(bare)
		if err != nil {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestTag = name
		}
	}
	if best != nil {
		return bestTag, nil
	}

	first := strings.TrimSpace(tags[0].Name)
	if first == "" {
		return "", fmt.Errorf("%w: empty tag name for %s/%s", ErrUnexpectedResponse, r.Owner, r.Repo)
	}
	return first, nil
}
