package versioncheck

// Endpoints overrides upstream locations. Empty fields use the public defaults.
type Endpoints struct {
	GitHubAPI     string
	DebianRelease string
	RustChannel   string
	GoVersion     string
	NodeIndex     string
	PythonFTP     string
	SDKMANAPI     string
	// JavaPlatform is the SDKMAN platform identifier
	JavaPlatform string
}

// DefaultTrackers returns the variables checked in every docker-bake.hcl,
// in report order.
func DefaultTrackers(client *RetryableHTTPClient, ep Endpoints) []Tracker {
	github := func(owner, repo string, strategy GitHubStrategy, strip ...string) *GitHubResolver {
		return &GitHubResolver{
			Client:   client,
			APIURL:   ep.GitHubAPI,
			Owner:    owner,
			Repo:     repo,
			Strategy: strategy,
			Strip:    strip,
		}
	}

	return []Tracker{
		{Name: "DEBIAN_TAG", Resolver: &DebianResolver{Client: client, URL: ep.DebianRelease}},
		// rustup publishes tags only
		{Name: "RUSTUP_VERSION", Resolver: github("rust-lang", "rustup", StrategyTags)},
		{Name: "RUST_TOOLCHAIN", Resolver: &RustResolver{Client: client, URL: ep.RustChannel}},
		{Name: "GO_VERSION", Resolver: &GoResolver{Client: client, URL: ep.GoVersion}},
		{Name: "BUN_VERSION", Resolver: github("oven-sh", "bun", StrategyReleases, "bun-v", "v")},
		{Name: "NODE_VERSION", Resolver: &NodeResolver{Client: client, URL: ep.NodeIndex}},
		{Name: "UV_VERSION", Resolver: github("astral-sh", "uv", StrategyReleases, "v")},
		{Name: "PYTHON_VERSION", Resolver: &PythonResolver{Client: client, URL: ep.PythonFTP}},
		{Name: "SDKMAN_VERSION", Resolver: github("sdkman", "sdkman-cli", StrategyReleases, "v")},
		{Name: "JAVA_VERSION", Resolver: &JavaResolver{Client: client, APIURL: ep.SDKMANAPI, Platform: ep.JavaPlatform}},
		{Name: "DUCKDB_VERSION", Resolver: github("duckdb", "duckdb", StrategyReleases, "v")},
		{Name: "OPENCODE_VERSION", Resolver: github("anomalyco", "opencode", StrategyReleases)},
	}
}
