package versioncheck

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultSDKMANAPIURL is the SDKMAN candidates API base.
const DefaultSDKMANAPIURL = "https://api.sdkman.io/2"

// DefaultJavaPlatform is the SDKMAN platform identifier queried by default.
const DefaultJavaPlatform = "linuxx64"

// JavaResolver resolves the latest SDKMAN Java identifier for the pinned
// major version and distribution (e.g. "21.0.9-tem").
type JavaResolver struct {
	Client *RetryableHTTPClient
	// APIURL is the SDKMAN API base
	APIURL string
	// Platform is the SDKMAN platform (default: linuxx64)
	Platform string
}

// Source implements Resolver.
func (r *JavaResolver) Source() string { return "api.sdkman.io" }

// versionsURL builds the versions list URL.
// SDKMAN rejects the request unless installed= is present, even when empty.
func (r *JavaResolver) versionsURL() string {
	base := strings.TrimSuffix(r.APIURL, "/")
	if base == "" {
		base = DefaultSDKMANAPIURL
	}
	platform := r.Platform
	if platform == "" {
		platform = DefaultJavaPlatform
	}
	return fmt.Sprintf("%s/candidates/java/%s/versions/list?installed=", base, platform)
}

// Latest scans the SDKMAN versions table for identifiers matching current.
func (r *JavaResolver) Latest(ctx context.Context, current string) (string, error) {
	num, dist, ok := splitIdentifier(current)
	if !ok {
		return "", fmt.Errorf("%w: JAVA_VERSION %q", ErrUnrecognizedFormat, current)
	}
	nums := ParseInts(num)
	if len(nums) == 0 {
		return "", fmt.Errorf("%w: JAVA_VERSION %q", ErrUnrecognizedFormat, current)
	}

	table, err := r.Client.FetchText(ctx, r.versionsURL())
	if err != nil {
		return "", err
	}

	latest := latestJavaIdentifier(table, strconv.Itoa(nums[0]), dist)
	if latest == "" {
		return "", fmt.Errorf("%w: could not find matching Java versions for %s", ErrNoMatchingVersion, current)
	}
	return latest, nil
}

// latestJavaIdentifier picks the highest identifier with the given major
// and, when dist is set, the same distribution suffix. The identifier is
// the last column of each table row.
func latestJavaIdentifier(table, major, dist string) string {
	var (
		best     []int
		bestName string
	)
	for _, line := range strings.Split(table, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		ident := fields[len(fields)-1]
		if strings.Contains(ident, "|") {
			continue
		}
		if dist != "" && !strings.HasSuffix(ident, "-"+dist) {
			continue
		}
		if !strings.HasPrefix(ident, major+".") {
			continue
		}
		identNum, _, ok := splitIdentifier(ident)
		if !ok {
			continue
		}
		nums := ParseInts(identNum)
		if len(nums) == 0 {
			continue
		}
		if best == nil || CompareInts(nums, best) > 0 {
			best = nums
			bestName = ident
		}
	}
	return bestName
}
