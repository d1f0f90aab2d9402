package main

import (
	"github.com/obentoo/bakecheck/internal/bakefile"
	"github.com/obentoo/bakecheck/internal/versioncheck"
	"github.com/spf13/cobra"
)

var (
	// varsOnly restricts output to these variable names
	varsOnly []string
	// varsExport prefixes every line with "export "
	varsExport bool
)

var varsCmd = &cobra.Command{
	Use:   "vars [NAME...]",
	Short: "Print resolved bake variables as shell assignments",
	Long: `Print every variable default of the bake file as NAME=value lines, sorted
by name, with environment overrides applied. Values are shell-quoted so the
output can be sourced or eval'd.

Examples:
  bakecheck vars                         Print all variables
  bakecheck vars GO_VERSION NODE_VERSION Print selected variables
  eval "$(bakecheck vars --export)"      Export all pins into the shell`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVars(cmd, append(varsOnly, args...))
	},
}

func init() {
	varsCmd.Flags().StringSliceVar(&varsOnly, "only", nil, "Only print these variables")
	varsCmd.Flags().BoolVar(&varsExport, "export", false, "Prefix each line with export")

	rootCmd.AddCommand(varsCmd)
}

// runVars prints the resolved variables; no upstream is contacted
func runVars(cmd *cobra.Command, only []string) error {
	_, vars, err := bakefile.Load(bakeFilePath())
	if err != nil {
		return failWith(exitFailure, err)
	}

	opts := versioncheck.VarsOptions{Only: only, Export: varsExport}
	if err := versioncheck.WriteVars(cmd.OutOrStdout(), vars, opts); err != nil {
		return failWith(exitFailure, err)
	}
	return nil
}
