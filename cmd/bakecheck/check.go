package main

import (
	"fmt"

	"github.com/obentoo/bakecheck/internal/bakefile"
	"github.com/obentoo/bakecheck/internal/common/config"
	"github.com/obentoo/bakecheck/internal/common/logger"
	"github.com/obentoo/bakecheck/internal/versioncheck"
	"github.com/spf13/cobra"
)

var (
	// checkJSON emits JSON instead of a table
	checkJSON bool
	// checkFail exits 1 when any pin is outdated or unknown
	checkFail bool

	// Legacy spellings kept on the root command
	legacyPrintVars bool
	legacyUpdate    bool
)

func init() {
	flags := rootCmd.Flags()
	flags.BoolVar(&checkJSON, "json", false, "Emit JSON instead of a table")
	flags.BoolVar(&checkFail, "fail", false, "Exit 1 if any pin is OUTDATED or UNKNOWN")

	flags.BoolVar(&legacyPrintVars, "print-vars", false, "Same as the vars command")
	flags.BoolVar(&legacyUpdate, "update", false, "Same as the update command")
	flags.StringSliceVar(&varsOnly, "only", nil, "With --print-vars, only print these variables")
	flags.BoolVar(&varsExport, "export", false, "With --print-vars, prefix lines with export")
	flags.BoolVar(&updateDryRun, "dry-run", false, "With --update, show changes without writing")
	flags.BoolVar(&updateIncludeUnknown, "include-unknown", false, "With --update, also rewrite UNKNOWN pins that carry a latest version (failed lookups never do)")
	for _, name := range []string{"print-vars", "update", "only", "export", "dry-run", "include-unknown"} {
		flags.MarkHidden(name)
	}
}

// runCheck is the default command: check every pin and report
func runCheck(cmd *cobra.Command, args []string) error {
	if legacyPrintVars {
		return runVars(cmd, append(varsOnly, args...))
	}
	if len(args) > 0 {
		return failWith(exitFailure, fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath()))
	}
	if legacyUpdate {
		return runUpdate(cmd)
	}

	path := bakeFilePath()
	_, vars, err := bakefile.Load(path)
	if err != nil {
		return failWith(exitFailure, err)
	}

	checker, err := newChecker()
	if err != nil {
		return failWith(exitFailure, err)
	}

	logger.Debug("checking %d pins in %s", len(checker.Trackers()), path)
	outcomes, err := checker.Run(cmd.Context(), vars)
	if err != nil {
		return failWith(exitFailure, err)
	}

	out := cmd.OutOrStdout()
	if checkJSON {
		err = versioncheck.WriteJSON(out, outcomes)
	} else {
		err = versioncheck.WriteTable(out, outcomes)
	}
	if err != nil {
		return failWith(exitFailure, err)
	}

	if checkFail && versioncheck.AnyNotOK(outcomes) {
		return failWith(exitNotOK, nil)
	}
	return nil
}

// newChecker builds a checker from the loaded settings
func newChecker() (*versioncheck.Checker, error) {
	retry := versioncheck.DefaultRetryConfig()
	retry.Timeout = settings.HTTP.Timeout
	retry.MaxRetries = settings.HTTP.Retries

	client := versioncheck.NewRetryableHTTPClientWithConfig(retry)
	client.SetUserAgent(settings.HTTP.UserAgent)
	client.SetGitHubToken(settings.GitHub.Token)
	client.SetGitHubAPIURL(settings.GitHub.APIURL)

	ep := versioncheck.Endpoints{
		GitHubAPI:     settings.GitHub.APIURL,
		DebianRelease: settings.Endpoints.DebianRelease,
		RustChannel:   settings.Endpoints.RustChannel,
		GoVersion:     settings.Endpoints.GoVersion,
		NodeIndex:     settings.Endpoints.NodeIndex,
		PythonFTP:     settings.Endpoints.PythonFTP,
		SDKMANAPI:     settings.Endpoints.SDKMANAPI,
		JavaPlatform:  settings.Java.Platform,
	}

	extra, err := extraTrackers(client, settings.GitHub.APIURL, settings.Trackers)
	if err != nil {
		return nil, err
	}

	return versioncheck.NewChecker(
		versioncheck.WithHTTPClient(client),
		versioncheck.WithEndpoints(ep),
		versioncheck.WithExtraTrackers(extra...),
	)
}

// extraTrackers turns configured trackers into checker trackers
func extraTrackers(client *versioncheck.RetryableHTTPClient, apiURL string, configs []config.TrackerConfig) ([]versioncheck.Tracker, error) {
	trackers := make([]versioncheck.Tracker, 0, len(configs))
	for _, tc := range configs {
		if tc.IsPage() {
			ex, err := versioncheck.NewExtractor(tc.Parser, tc.Path, tc.Pattern, tc.Selector, tc.XPath)
			if err != nil {
				return nil, fmt.Errorf("tracker %s: %w", tc.Name, err)
			}
			trackers = append(trackers, versioncheck.Tracker{
				Name: tc.Name,
				Resolver: &versioncheck.PageResolver{
					Client:    client,
					URL:       tc.URL,
					Extractor: ex,
					Label:     tc.Source,
					Strip:     tc.Strip,
					AddV:      tc.AddV,
				},
			})
			continue
		}

		owner, repo, _ := tc.OwnerRepo()
		trackers = append(trackers, versioncheck.Tracker{
			Name: tc.Name,
			Resolver: &versioncheck.GitHubResolver{
				Client:   client,
				APIURL:   apiURL,
				Owner:    owner,
				Repo:     repo,
				Strategy: versioncheck.GitHubStrategy(tc.Strategy),
				Strip:    tc.Strip,
				AddV:     tc.AddV,
			},
		})
	}
	return trackers, nil
}
