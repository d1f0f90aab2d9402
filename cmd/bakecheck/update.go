package main

import (
	"fmt"

	"github.com/obentoo/bakecheck/internal/bakefile"
	"github.com/obentoo/bakecheck/internal/common/logger"
	"github.com/obentoo/bakecheck/internal/common/output"
	"github.com/obentoo/bakecheck/internal/versioncheck"
	"github.com/spf13/cobra"
)

var (
	// updateDryRun shows changes without writing
	updateDryRun bool
	// updateIncludeUnknown also rewrites unknown pins with a known latest version
	updateIncludeUnknown bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rewrite outdated pins with their latest versions",
	Long: `Check every pin and rewrite the defaults of OUTDATED variables in the bake
file with the latest upstream version. Only the quoted default value is
replaced; comments, formatting and other blocks are preserved. The result
is validated as HCL before the file is replaced.

UNKNOWN pins are skipped. A failed lookup has no latest version, so
--include-unknown only matters for outcomes built by other callers of the
update planner; a normal check never produces one it could rewrite.

Examples:
  bakecheck update --dry-run        Show what would change
  bakecheck update                  Apply changes
  bakecheck -f ci/docker-bake.hcl update`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate(cmd)
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Show changes without writing the file")
	updateCmd.Flags().BoolVar(&updateIncludeUnknown, "include-unknown", false, "Also rewrite UNKNOWN pins that carry a latest version (failed lookups never do)")

	rootCmd.AddCommand(updateCmd)
}

// runUpdate checks all pins and rewrites the outdated ones
func runUpdate(cmd *cobra.Command) error {
	path := bakeFilePath()
	text, vars, err := bakefile.Load(path)
	if err != nil {
		return failWith(exitFailure, err)
	}

	checker, err := newChecker()
	if err != nil {
		return failWith(exitFailure, err)
	}

	outcomes, err := checker.Run(cmd.Context(), vars)
	if err != nil {
		return failWith(exitFailure, err)
	}

	for _, o := range outcomes {
		if o.Status == versioncheck.StatusUnknown && !(updateIncludeUnknown && o.HasLatest()) {
			logger.Warn("skipping %s: %s", o.Name, o.Note)
		}
	}

	updated, changes := versioncheck.PlanUpdate(text, outcomes, versioncheck.UpdateOptions{
		IncludeUnknown: updateIncludeUnknown,
	})

	out := cmd.OutOrStdout()
	if len(changes) == 0 {
		fmt.Fprintln(out, "All versions are up-to-date. Nothing to update.")
		return nil
	}

	if updateDryRun {
		fmt.Fprintln(out, output.Heading("Would update:"))
	} else {
		fmt.Fprintln(out, output.Heading("Updates:"))
	}
	if err := versioncheck.WriteChanges(out, changes); err != nil {
		return failWith(exitFailure, err)
	}

	if updateDryRun {
		fmt.Fprintf(out, "\nDry run: %s not modified.\n", path)
		return nil
	}

	if err := bakefile.Validate(updated, path); err != nil {
		return failWith(exitFailure, err)
	}
	if err := bakefile.WriteFile(path, updated); err != nil {
		return failWith(exitFailure, err)
	}

	fmt.Fprintf(out, "\nUpdated %s\n", path)
	return nil
}
