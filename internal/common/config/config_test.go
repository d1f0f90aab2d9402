package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// writeConfig writes content to a config.yaml in a temp dir
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// TestTrackerRepoValidation tests that owner/repo splitting accepts exactly one slash
func TestTrackerRepoValidation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	segment := gen.RegexMatch(`^[a-z][a-z0-9-]{0,10}$`)

	properties.Property("owner/repo round-trips through OwnerRepo", prop.ForAll(
		func(owner, repo string) bool {
			tc := TrackerConfig{Name: "X", Repo: owner + "/" + repo}
			o, r, ok := tc.OwnerRepo()
			return ok && o == owner && r == repo && tc.Validate() == nil
		},
		segment,
		segment,
	))

	properties.Property("nested paths are rejected", prop.ForAll(
		func(a, b, c string) bool {
			tc := TrackerConfig{Name: "X", Repo: a + "/" + b + "/" + c}
			return errors.Is(tc.Validate(), ErrInvalidTracker)
		},
		segment,
		segment,
		segment,
	))

	properties.TestingRun(t)
}

func TestLoadFromFullConfig(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  file: true
http:
  timeout: 5s
  retries: 2
  user_agent: my-checker
github:
  api_url: https://github.example.com/api/v3
  token: secret
java:
  platform: linuxarm64
endpoints:
  go_version: https://mirror.example.com/VERSION
trackers:
  - name: TERRAFORM_VERSION
    repo: hashicorp/terraform
    strip: [v]
  - name: RUSTUP_MIRROR
    repo: rust-lang/rustup
    strategy: tags
    add_v: true
  - name: SQLITE_VERSION
    url: https://sqlite.org/download.html
    parser: regex
    pattern: 'sqlite-autoconf-(\d+)\.tar'
    source: sqlite.org
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Log.Level != "debug" || !cfg.Log.File {
		t.Errorf("Unexpected log config: %+v", cfg.Log)
	}
	if cfg.HTTP.Timeout != 5*time.Second || cfg.HTTP.Retries != 2 || cfg.HTTP.UserAgent != "my-checker" {
		t.Errorf("Unexpected http config: %+v", cfg.HTTP)
	}
	if cfg.GitHub.Token != "secret" || cfg.GitHub.APIURL != "https://github.example.com/api/v3" {
		t.Errorf("Unexpected github config: %+v", cfg.GitHub)
	}
	if cfg.Java.Platform != "linuxarm64" {
		t.Errorf("Expected platform linuxarm64, got %q", cfg.Java.Platform)
	}
	if cfg.Endpoints.GoVersion != "https://mirror.example.com/VERSION" {
		t.Errorf("Unexpected endpoints: %+v", cfg.Endpoints)
	}
	if len(cfg.Trackers) != 3 {
		t.Fatalf("Expected 3 trackers, got %d", len(cfg.Trackers))
	}
	if cfg.Trackers[1].Strategy != "tags" || !cfg.Trackers[1].AddV || cfg.Trackers[1].IsPage() {
		t.Errorf("Unexpected tracker: %+v", cfg.Trackers[1])
	}
	page := cfg.Trackers[2]
	if !page.IsPage() || page.Parser != "regex" || page.Pattern != `sqlite-autoconf-(\d+)\.tar` || page.Source != "sqlite.org" {
		t.Errorf("Unexpected page tracker: %+v", page)
	}
}

func TestLoadFromPartialConfigKeepsDefaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	path := writeConfig(t, "java:\n  platform: darwinx64\n")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.HTTP.Timeout != DefaultTimeout {
		t.Errorf("Expected default timeout, got %v", cfg.HTTP.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level, got %q", cfg.Log.Level)
	}
}

func TestLoadFromGitHubTokenFromEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "from-env")
	path := writeConfig(t, "http:\n  retries: 1\n")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.GitHub.Token != "from-env" {
		t.Errorf("Expected token from env, got %q", cfg.GitHub.Token)
	}
}

func TestLoadFromMalformedYAML(t *testing.T) {
	path := writeConfig(t, "http: [unterminated\n")
	_, err := LoadFrom(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadFromNegativeRetries(t *testing.T) {
	path := writeConfig(t, "http:\n  retries: -1\n")
	_, err := LoadFrom(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadFromInvalidTrackers(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "trackers:\n  - repo: a/b\n"},
		{"bad repo", "trackers:\n  - name: A\n    repo: nope\n"},
		{"bad strategy", "trackers:\n  - name: A\n    repo: a/b\n    strategy: branches\n"},
		{"duplicate", "trackers:\n  - name: A\n    repo: a/b\n  - name: A\n    repo: c/d\n"},
		{"repo and url", "trackers:\n  - name: A\n    repo: a/b\n    url: https://x.org\n    parser: regex\n    pattern: (v)\n"},
		{"relative url", "trackers:\n  - name: A\n    url: /downloads\n    parser: regex\n    pattern: (v)\n"},
		{"unknown parser", "trackers:\n  - name: A\n    url: https://x.org\n    parser: xml\n"},
		{"json without path", "trackers:\n  - name: A\n    url: https://x.org\n    parser: json\n"},
		{"regex without pattern", "trackers:\n  - name: A\n    url: https://x.org\n    parser: regex\n"},
		{"html without selector", "trackers:\n  - name: A\n    url: https://x.org\n    parser: html\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, tt.content))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestLoadWithoutConfigUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.HTTP.Timeout != DefaultTimeout || len(cfg.Trackers) != 0 {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestConfigPathsPriority(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))

	legacy := filepath.Join(home, ".bakecheck", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(legacy), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(legacy, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	path, err := FindConfigPath()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if path != legacy {
		t.Errorf("Expected legacy path when XDG config is absent, got %q", path)
	}

	xdg := filepath.Join(home, "xdg", "bakecheck", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(xdg), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xdg, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	path, _ = FindConfigPath()
	if path != xdg {
		t.Errorf("Expected XDG path to take priority, got %q", path)
	}
}
