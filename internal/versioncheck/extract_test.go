package versioncheck

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// =============================================================================
// Property-Based Tests
// =============================================================================

func genExtractVersion() gopter.Gen {
	return gen.RegexMatch(`^[0-9]{1,3}\.[0-9]{1,3}(\.[0-9]{1,3})?$`)
}

func genFieldName() gopter.Gen {
	return gen.RegexMatch(`^[a-z][a-z0-9_]{0,10}$`)
}

// TestJSONExtractorNested tests that a nested field under an array is read back
func TestJSONExtractorNested(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("outer[1].inner returns the stored version", prop.ForAll(
		func(outer, inner, version string) bool {
			content, err := json.Marshal(map[string]any{
				outer: []any{
					map[string]any{inner: "0.0.1"},
					map[string]any{inner: version},
				},
			})
			if err != nil {
				return false
			}

			ex, err := NewExtractor("json", fmt.Sprintf("%s[1].%s", outer, inner), "", "", "")
			if err != nil {
				t.Logf("NewExtractor failed: %v", err)
				return false
			}
			got, err := ex.Extract(content)
			return err == nil && got == version
		},
		genFieldName(),
		genFieldName(),
		genExtractVersion(),
	))

	properties.TestingRun(t)
}

// TestHTMLExtractorSelectors tests that CSS and XPath agree on the same element
func TestHTMLExtractorSelectors(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("CSS class and XPath class match the same text", prop.ForAll(
		func(tag, version string) bool {
			page := fmt.Sprintf(`<html><body><%[1]s class="ver">%[2]s</%[1]s><%[1]s class="ver">0.0.0</%[1]s></body></html>`, tag, version)

			css, err := NewExtractor("html", "", "", ".ver", "")
			if err != nil {
				return false
			}
			xp, err := NewExtractor("html", "", "", "", fmt.Sprintf("//%s[@class='ver']", tag))
			if err != nil {
				return false
			}

			a, errA := css.Extract([]byte(page))
			b, errB := xp.Extract([]byte(page))
			return errA == nil && errB == nil && a == version && b == version
		},
		gen.OneConstOf("div", "span", "p", "strong"),
		genExtractVersion(),
	))

	properties.TestingRun(t)
}

// =============================================================================
// Unit Tests
// =============================================================================

func TestNewExtractorErrors(t *testing.T) {
	tests := []struct {
		name                                 string
		kind, path, pattern, selector, xpath string
	}{
		{name: "unknown kind", kind: "yaml"},
		{name: "empty json path", kind: "json"},
		{name: "json path starts with index", kind: "json", path: "[0].tag"},
		{name: "json empty segment", kind: "json", path: "a..b"},
		{name: "json unclosed bracket", kind: "json", path: "a[0"},
		{name: "json bad index", kind: "json", path: "a[x]"},
		{name: "json trailing junk", kind: "json", path: "a[0]b"},
		{name: "empty regex", kind: "regex"},
		{name: "regex without group", kind: "regex", pattern: `v\d+`},
		{name: "invalid regex", kind: "regex", pattern: `(`},
		{name: "html without selector", kind: "html"},
		{name: "html invalid pattern", kind: "html", selector: "p", pattern: `[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtractor(tt.kind, tt.path, tt.pattern, tt.selector, tt.xpath)
			if !errors.Is(err, ErrInvalidExtractor) {
				t.Errorf("Expected ErrInvalidExtractor, got %v", err)
			}
		})
	}
}

func TestJSONExtractor(t *testing.T) {
	content := []byte(`{"info": {"version": " 2.4.1 "}, "build": 7, "tags": [["a", "1.0"]], "flag": true}`)

	tests := []struct {
		path    string
		want    string
		wantErr error
	}{
		{path: "info.version", want: "2.4.1"},
		{path: "build", want: "7"},
		{path: "tags[0][1]", want: "1.0"},
		{path: "tags[1][0]", wantErr: ErrNothingExtracted},
		{path: "info.missing", wantErr: ErrNothingExtracted},
		{path: "info.version.deeper", wantErr: ErrNothingExtracted},
		{path: "flag", wantErr: ErrNothingExtracted},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			ex, err := NewExtractor("json", tt.path, "", "", "")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			got, err := ex.Extract(content)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v (value %q)", tt.wantErr, err, got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Expected %q, got %q (err %v)", tt.want, got, err)
			}
		})
	}
}

func TestJSONExtractorMalformed(t *testing.T) {
	ex := &JSONExtractor{Path: "version"}
	if _, err := ex.Extract([]byte(`{"version":`)); !errors.Is(err, ErrUnexpectedResponse) {
		t.Errorf("Expected ErrUnexpectedResponse, got %v", err)
	}
}

func TestRegexExtractor(t *testing.T) {
	ex, err := NewExtractor("regex", "", `Latest release: v?(\d+\.\d+\.\d+)`, "", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := ex.Extract([]byte("<p>Latest release: v3.2.1 (2025-11-02)</p>"))
	if err != nil || got != "3.2.1" {
		t.Errorf("Expected 3.2.1, got %q (err %v)", got, err)
	}

	if _, err := ex.Extract([]byte("nothing here")); !errors.Is(err, ErrNothingExtracted) {
		t.Errorf("Expected ErrNothingExtracted, got %v", err)
	}
}

func TestHTMLExtractor(t *testing.T) {
	page := []byte(`<html><body>
<ul id="downloads">
  <li><a href="/dl/tool-4.1.0.tar.gz">tool 4.1.0</a></li>
  <li><a href="/dl/tool-4.0.9.tar.gz">tool 4.0.9</a></li>
</ul>
<span class="empty">  </span>
</body></html>`)

	tests := []struct {
		name                     string
		selector, xpath, pattern string
		want                     string
		wantErr                  error
	}{
		{name: "css first match", selector: "#downloads a", want: "tool 4.1.0"},
		{name: "css with pattern", selector: "#downloads a", pattern: `(\d+\.\d+\.\d+)`, want: "4.1.0"},
		{name: "xpath attribute", xpath: "//ul[@id='downloads']/li[2]/a/@href", pattern: `tool-(.+)\.tar`, want: "4.0.9"},
		{name: "pattern without group", selector: "#downloads a", pattern: `\d+\.\d+`, want: "4.1"},
		{name: "css no match", selector: ".missing", wantErr: ErrNothingExtracted},
		{name: "xpath no match", xpath: "//table", wantErr: ErrNothingExtracted},
		{name: "empty element", selector: ".empty", wantErr: ErrNothingExtracted},
		{name: "pattern no match", selector: "#downloads a", pattern: `beta-(\d+)`, wantErr: ErrNothingExtracted},
		{name: "invalid xpath", xpath: "//ul[", wantErr: ErrInvalidExtractor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := NewExtractor("html", "", tt.pattern, tt.selector, tt.xpath)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			got, err := ex.Extract(page)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v (value %q)", tt.wantErr, err, got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Expected %q, got %q (err %v)", tt.want, got, err)
			}
		})
	}
}
