package versioncheck

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultPythonFTPURL is the CPython release directory listing.
const DefaultPythonFTPURL = "https://www.python.org/ftp/python/"

var (
	// releaseDirPattern matches listing entries like "3.13.1/"
	releaseDirPattern = regexp.MustCompile(`^(\d+\.\d+\.\d+)/$`)
	// majorMinorPattern matches pins like "3.13"
	majorMinorPattern = regexp.MustCompile(`^\d+\.\d+$`)
	// fullVersionPattern matches pins like "3.13.1"
	fullVersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// PythonResolver resolves the latest CPython patch release for the pinned minor.
type PythonResolver struct {
	Client *RetryableHTTPClient
	// URL is the directory listing location
	URL string
}

// Source implements Resolver.
func (r *PythonResolver) Source() string { return "python.org" }

// Latest returns the highest "major.minor.patch" directory matching current's minor.
// current may be "3.13" or "3.13.1".
func (r *PythonResolver) Latest(ctx context.Context, current string) (string, error) {
	var majorMinor string
	switch {
	case majorMinorPattern.MatchString(current):
		majorMinor = current
	case fullVersionPattern.MatchString(current):
		parts := strings.SplitN(current, ".", 3)
		majorMinor = parts[0] + "." + parts[1]
	default:
		return "", fmt.Errorf("%w: PYTHON_VERSION %q", ErrUnrecognizedFormat, current)
	}

	url := r.URL
	if url == "" {
		url = DefaultPythonFTPURL
	}

	text, err := r.Client.FetchText(ctx, url)
	if err != nil {
		return "", err
	}

	latest, err := latestPythonPatch(text, majorMinor)
	if err != nil {
		return "", err
	}
	return latest, nil
}

// Floats implements Floating: a major.minor pin picks up the latest patch at build time.
func (r *PythonResolver) Floats(current string) (string, bool) {
	if majorMinorPattern.MatchString(current) {
		return "pinned to major.minor; latest patch is picked at build time", true
	}
	return "", false
}

// latestPythonPatch scans a directory listing for release directories.
func latestPythonPatch(listing, majorMinor string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listing))
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse directory listing: %v", ErrUnexpectedResponse, err)
	}

	prefix := majorMinor + "."
	var (
		best     []int
		bestName string
	)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		m := releaseDirPattern.FindStringSubmatch(href)
		if m == nil || !strings.HasPrefix(m[1], prefix) {
			return
		}
		nums := ParseInts(m[1])
		if nums == nil {
			return
		}
		if best == nil || CompareInts(nums, best) > 0 {
			best = nums
			bestName = m[1]
		}
	})

	if best == nil {
		return "", fmt.Errorf("%w: could not find patch releases for %s", ErrNoMatchingVersion, majorMinor)
	}
	return bestName, nil
}
