package versioncheck

import (
	"context"
	"fmt"
	"strings"
)

// DefaultNodeIndexURL is the official Node.js distribution index.
const DefaultNodeIndexURL = "https://nodejs.org/dist/index.json"

// nodeRelease is one entry of the distribution index
type nodeRelease struct {
	Version string `json:"version"`
}

// NodeResolver resolves the latest Node.js patch release within the pinned major.
type NodeResolver struct {
	Client *RetryableHTTPClient
	// URL is the distribution index location
	URL string
}

// Source implements Resolver.
func (r *NodeResolver) Source() string { return "nodejs.org" }

// Latest returns the highest "vX.Y.Z" release sharing current's major, without the "v".
func (r *NodeResolver) Latest(ctx context.Context, current string) (string, error) {
	curNums := ParseInts(stripPrefixes(current, "v"))
	if len(curNums) == 0 {
		return "", fmt.Errorf("%w: NODE_VERSION %q", ErrUnrecognizedFormat, current)
	}
	major := curNums[0]

	url := r.URL
	if url == "" {
		url = DefaultNodeIndexURL
	}

	var index []nodeRelease
	if err := r.Client.FetchJSON(ctx, url, &index); err != nil {
		return "", err
	}

	var (
		best     []int
		bestName string
	)
	for _, rel := range index {
		v := strings.TrimSpace(rel.Version)
		if !strings.HasPrefix(v, "v") {
			continue
		}
		num := strings.TrimPrefix(v, "v")
		nums := ParseInts(num)
		if len(nums) == 0 || nums[0] != major {
			continue
		}
		if best == nil || CompareInts(nums, best) > 0 {
			best = nums
			bestName = num
		}
	}

	if best == nil {
		return "", fmt.Errorf("%w: no Node.js releases for major %d", ErrNoMatchingVersion, major)
	}
	return bestName, nil
}
