package versioncheck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// Error variables for extractor errors
var (
	// ErrInvalidExtractor is returned when an extractor is misconfigured
	ErrInvalidExtractor = errors.New("invalid extractor")
	// ErrNothingExtracted is returned when the page holds no matching version
	ErrNothingExtracted = errors.New("no version extracted from page")
)

// Extractor pulls a version string out of a fetched page.
type Extractor interface {
	Extract(content []byte) (string, error)
}

// NewExtractor creates an extractor of the given kind.
//
//   - "json": path is a dotted path with array indexes, e.g. "releases[0].version"
//   - "regex": pattern must have a capture group; the first group is the version
//   - "html": selector (CSS) or xpath picks the first matching element, and the
//     optional pattern narrows its text
func NewExtractor(kind, path, pattern, selector, xpath string) (Extractor, error) {
	switch kind {
	case "json":
		segments, err := parseJSONPath(path)
		if err != nil {
			return nil, err
		}
		return &JSONExtractor{Path: path, segments: segments}, nil
	case "regex":
		re, err := compileCapture(pattern, true)
		if err != nil {
			return nil, err
		}
		return &RegexExtractor{re: re}, nil
	case "html":
		if selector == "" && xpath == "" {
			return nil, fmt.Errorf("%w: html needs a selector or an xpath", ErrInvalidExtractor)
		}
		h := &HTMLExtractor{Selector: selector, XPath: xpath}
		if pattern != "" {
			re, err := compileCapture(pattern, false)
			if err != nil {
				return nil, err
			}
			h.re = re
		}
		return h, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q (want json, regex or html)", ErrInvalidExtractor, kind)
	}
}

// compileCapture compiles pattern, optionally requiring a capture group
func compileCapture(pattern string, needGroup bool) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidExtractor)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExtractor, err)
	}
	if needGroup && re.NumSubexp() < 1 {
		return nil, fmt.Errorf("%w: pattern %q has no capture group", ErrInvalidExtractor, pattern)
	}
	return re, nil
}

// firstMatch returns the first capture group of re in text, or the whole
// match when the pattern has no group
func firstMatch(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return m[1], m[1] != ""
	}
	return m[0], m[0] != ""
}

// =============================================================================
// JSON
// =============================================================================

// JSONExtractor reads a version from a JSON document.
type JSONExtractor struct {
	Path     string
	segments []pathSegment
}

// pathSegment is one field name or array index of a JSON path
type pathSegment struct {
	field   string
	index   int
	isIndex bool
}

// parseJSONPath splits "data.releases[0].tag" into segments.
func parseJSONPath(path string) ([]pathSegment, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty JSON path", ErrInvalidExtractor)
	}

	var segments []pathSegment
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("%w: empty segment in JSON path %q", ErrInvalidExtractor, path)
		}
		name, rest, _ := strings.Cut(part, "[")
		if name == "" && len(segments) == 0 {
			return nil, fmt.Errorf("%w: JSON path %q must start with a field", ErrInvalidExtractor, path)
		}
		if name != "" {
			segments = append(segments, pathSegment{field: name})
		}
		for rest != "" {
			idx, after, found := strings.Cut(rest, "]")
			if !found {
				return nil, fmt.Errorf("%w: unclosed bracket in %q", ErrInvalidExtractor, path)
			}
			n, err := strconv.Atoi(idx)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: bad array index %q in %q", ErrInvalidExtractor, idx, path)
			}
			segments = append(segments, pathSegment{index: n, isIndex: true})
			rest = strings.TrimPrefix(after, "[")
			if after != "" && !strings.HasPrefix(after, "[") {
				return nil, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidExtractor, after, path)
			}
		}
	}
	return segments, nil
}

// Extract implements Extractor.
func (e *JSONExtractor) Extract(content []byte) (string, error) {
	segments := e.segments
	if segments == nil {
		var err error
		if segments, err = parseJSONPath(e.Path); err != nil {
			return "", err
		}
	}

	var current any
	if err := json.Unmarshal(content, &current); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	for _, seg := range segments {
		if seg.isIndex {
			arr, ok := current.([]any)
			if !ok || seg.index >= len(arr) {
				return "", fmt.Errorf("%w: index [%d] not found at %s", ErrNothingExtracted, seg.index, e.Path)
			}
			current = arr[seg.index]
			continue
		}
		obj, ok := current.(map[string]any)
		if !ok {
			return "", fmt.Errorf("%w: field %q not found at %s", ErrNothingExtracted, seg.field, e.Path)
		}
		if current, ok = obj[seg.field]; !ok {
			return "", fmt.Errorf("%w: field %q not found at %s", ErrNothingExtracted, seg.field, e.Path)
		}
	}

	switch v := current.(type) {
	case string:
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	case float64:
		// Bare numbers like 3 or 1.5
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%w: value at %s is not a version string", ErrNothingExtracted, e.Path)
}

// =============================================================================
// Regex
// =============================================================================

// RegexExtractor reads a version from the first capture group of a pattern.
type RegexExtractor struct {
	re *regexp.Regexp
}

// Extract implements Extractor.
func (e *RegexExtractor) Extract(content []byte) (string, error) {
	v, ok := firstMatch(e.re, string(content))
	if !ok {
		return "", fmt.Errorf("%w: pattern %q did not match", ErrNothingExtracted, e.re)
	}
	return strings.TrimSpace(v), nil
}

// =============================================================================
// HTML
// =============================================================================

// HTMLExtractor reads a version from the text of the first element matching
// a CSS selector (goquery) or an XPath expression (htmlquery).
type HTMLExtractor struct {
	Selector string
	XPath    string
	re       *regexp.Regexp
}

// Extract implements Extractor.
func (e *HTMLExtractor) Extract(content []byte) (string, error) {
	var (
		text string
		err  error
	)
	if e.Selector != "" {
		text, err = e.textByCSS(content)
	} else {
		text, err = e.textByXPath(content)
	}
	if err != nil {
		return "", err
	}

	if e.re != nil {
		v, ok := firstMatch(e.re, text)
		if !ok {
			return "", fmt.Errorf("%w: pattern %q did not match %q", ErrNothingExtracted, e.re, strings.TrimSpace(text))
		}
		text = v
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: matched element is empty", ErrNothingExtracted)
	}
	return text, nil
}

func (e *HTMLExtractor) textByCSS(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	sel := doc.Find(e.Selector)
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: nothing matches selector %q", ErrNothingExtracted, e.Selector)
	}
	return sel.First().Text(), nil
}

func (e *HTMLExtractor) textByXPath(content []byte) (string, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	nodes, err := htmlquery.QueryAll(doc, e.XPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidExtractor, err)
	}
	if len(nodes) == 0 {
		return "", fmt.Errorf("%w: nothing matches xpath %q", ErrNothingExtracted, e.XPath)
	}
	return htmlquery.InnerText(nodes[0]), nil
}
