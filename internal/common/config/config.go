package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig  = errors.New("invalid bakecheck config")
	ErrInvalidTracker = errors.New("invalid tracker")
)

// DefaultTimeout bounds every upstream request unless configured otherwise
const DefaultTimeout = 20 * time.Second

// Config represents the bakecheck settings file
type Config struct {
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	GitHub    GitHubConfig    `yaml:"github"`
	Java      JavaConfig      `yaml:"java"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	Trackers  []TrackerConfig `yaml:"trackers,omitempty"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error, quiet
	File  bool   `yaml:"file"`  // also append to $XDG_STATE_HOME/bakecheck/logs
}

// HTTPConfig holds upstream request settings
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
	UserAgent string        `yaml:"user_agent"`
}

// GitHubConfig holds GitHub API settings
type GitHubConfig struct {
	APIURL string `yaml:"api_url"`
	Token  string `yaml:"token"` // Personal access token for higher rate limits
}

// JavaConfig holds SDKMAN settings
type JavaConfig struct {
	Platform string `yaml:"platform"` // e.g. linuxx64, linuxarm64
}

// EndpointsConfig overrides upstream URLs (mirrors, air-gapped proxies)
type EndpointsConfig struct {
	DebianRelease string `yaml:"debian_release"`
	RustChannel   string `yaml:"rust_channel"`
	GoVersion     string `yaml:"go_version"`
	NodeIndex     string `yaml:"node_index"`
	PythonFTP     string `yaml:"python_ftp"`
	SDKMANAPI     string `yaml:"sdkman_api"`
}

// TrackerConfig declares an extra bake variable, tracked either through a
// GitHub repository (repo) or by scraping a page (url + parser)
type TrackerConfig struct {
	Name     string   `yaml:"name"`               // bake variable name
	Repo     string   `yaml:"repo,omitempty"`     // owner/repo
	Strategy string   `yaml:"strategy,omitempty"` // "releases" (default) or "tags"
	Strip    []string `yaml:"strip,omitempty"`    // tag prefixes to remove
	AddV     bool     `yaml:"add_v,omitempty"`    // re-add a "v" prefix

	// Page trackers
	URL      string `yaml:"url,omitempty"`
	Parser   string `yaml:"parser,omitempty"`   // json, regex, html
	Path     string `yaml:"path,omitempty"`     // json: e.g. releases[0].version
	Pattern  string `yaml:"pattern,omitempty"`  // regex, or html text filter
	Selector string `yaml:"selector,omitempty"` // html: CSS selector
	XPath    string `yaml:"xpath,omitempty"`    // html: XPath expression
	Source   string `yaml:"source,omitempty"`   // report label (default: URL host)
}

// Default returns the settings used when no config file exists
func Default() *Config {
	return &Config{
		Log:  LogConfig{Level: "info"},
		HTTP: HTTPConfig{Timeout: DefaultTimeout},
	}
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/bakecheck/config.yaml (XDG standard - priority)
// 2. ~/.bakecheck/config.yaml (legacy fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "bakecheck", "config.yaml"),
		filepath.Join(home, ".bakecheck", "config.yaml"),
	}, nil
}

// FindConfigPath returns the first existing config file path.
// It returns "" when no config file exists.
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// Load reads settings from the first available config file,
// falling back to defaults when none exists
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		cfg := Default()
		cfg.applyEnv()
		return cfg, nil
	}
	return LoadFrom(configPath)
}

// LoadFrom reads settings from a specific file path.
// Unset fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidConfig, path, err)
	}
	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = DefaultTimeout
	}
	if cfg.HTTP.Retries < 0 {
		return nil, fmt.Errorf("%w %s: http.retries must not be negative", ErrInvalidConfig, path)
	}
	if err := cfg.ValidateTrackers(); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidConfig, path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv fills settings that may come from the environment
func (c *Config) applyEnv() {
	if c.GitHub.Token == "" {
		c.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
}

// ValidateTrackers checks every extra tracker declaration
func (c *Config) ValidateTrackers() error {
	seen := make(map[string]bool, len(c.Trackers))
	for _, t := range c.Trackers {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.Name] {
			return fmt.Errorf("%w %s: declared twice", ErrInvalidTracker, t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// Validate checks a single tracker declaration
func (t TrackerConfig) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTracker)
	}
	if t.Repo != "" && t.URL != "" {
		return fmt.Errorf("%w %s: set either repo or url, not both", ErrInvalidTracker, t.Name)
	}
	if t.IsPage() {
		return t.validatePage()
	}
	if _, _, ok := t.OwnerRepo(); !ok {
		return fmt.Errorf("%w %s: repo must be owner/repo, got %q", ErrInvalidTracker, t.Name, t.Repo)
	}
	switch t.Strategy {
	case "", "releases", "tags":
	default:
		return fmt.Errorf("%w %s: strategy must be releases or tags, got %q", ErrInvalidTracker, t.Name, t.Strategy)
	}
	return nil
}

// OwnerRepo splits Repo into its owner and repository parts
func (t TrackerConfig) OwnerRepo() (owner, repo string, ok bool) {
	owner, repo, found := strings.Cut(t.Repo, "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", false
	}
	return owner, repo, true
}

// IsPage reports whether the tracker scrapes a page instead of GitHub
func (t TrackerConfig) IsPage() bool {
	return t.URL != ""
}

func (t TrackerConfig) validatePage() error {
	u, err := url.Parse(t.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w %s: url must be an absolute http(s) URL, got %q", ErrInvalidTracker, t.Name, t.URL)
	}
	switch t.Parser {
	case "json":
		if t.Path == "" {
			return fmt.Errorf("%w %s: json parser needs a path", ErrInvalidTracker, t.Name)
		}
	case "regex":
		if t.Pattern == "" {
			return fmt.Errorf("%w %s: regex parser needs a pattern", ErrInvalidTracker, t.Name)
		}
	case "html":
		if t.Selector == "" && t.XPath == "" {
			return fmt.Errorf("%w %s: html parser needs a selector or an xpath", ErrInvalidTracker, t.Name)
		}
	default:
		return fmt.Errorf("%w %s: parser must be json, regex or html, got %q", ErrInvalidTracker, t.Name, t.Parser)
	}
	return nil
}
