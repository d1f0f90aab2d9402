package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/obentoo/bakecheck/internal/common/config"
	"github.com/obentoo/bakecheck/internal/common/logger"
	"github.com/obentoo/bakecheck/internal/common/output"
	"github.com/obentoo/bakecheck/internal/common/version"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	exitOK      = 0
	exitNotOK   = 1
	exitFailure = 2
)

const (
	defaultBake  = "docker-bake.hcl"
	bakeFileEnv  = "BAKECHECK_FILE"
	configEnvKey = "BAKECHECK_CONFIG"
)

var (
	bakeFile   string
	configPath string
	verbose    bool
	quiet      bool
	noColor    bool

	// settings is loaded once per invocation in PersistentPreRunE
	settings = config.Default()
)

// exitError carries the process exit code for an error.
// A nil err exits silently.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// failWith wraps err with an exit code
func failWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

var rootCmd = &cobra.Command{
	Use:   "bakecheck",
	Short: "Check docker-bake.hcl version pins against upstream",
	Long: `Check the version pins declared as variable defaults in a docker-bake.hcl
file against their upstream sources (GitHub, Debian, Rust, Go, Node.js,
Python and SDKMAN) and report which ones are outdated.

Environment variables with the same name as a bake variable override its
default, the same way docker buildx bake resolves them.

Examples:
  bakecheck                         Print a status table
  bakecheck --json --fail           Emit JSON, exit 1 if anything is not ok
  bakecheck vars --export           Print pins as shell exports
  bakecheck update --dry-run        Show which pins would be rewritten
  bakecheck update                  Rewrite outdated pins in place`,
	Version:           version.Short(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: setup,
	RunE:              runCheck,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&bakeFile, "file", "f", "", "Path to docker-bake.hcl (default $"+bakeFileEnv+" or ./"+defaultBake+")")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to settings file (default ~/.config/bakecheck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// setup configures color, settings and logging before any command runs
func setup(cmd *cobra.Command, args []string) error {
	if noColor || os.Getenv("NO_COLOR") != "" {
		output.NoColor()
	}

	path := configPath
	if path == "" {
		path = os.Getenv(configEnvKey)
	}

	var err error
	if path != "" {
		settings, err = config.LoadFrom(path)
	} else {
		settings, err = config.Load()
	}
	if err != nil {
		return failWith(exitFailure, fmt.Errorf("loading config: %w", err))
	}

	level, ok := logger.ParseLevel(settings.Log.Level)
	logger.SetLevel(level)
	if !ok {
		logger.Warn("unknown log level %q, using info", settings.Log.Level)
	}
	if verbose {
		logger.SetVerbose(true)
	}
	if quiet {
		logger.SetQuiet(true)
	}

	if settings.Log.File {
		if err := logger.Default().EnableFileLogging(""); err != nil {
			logger.Warn("file logging disabled: %v", err)
		}
	}

	return nil
}

// bakeFilePath resolves the bake file from --file, $BAKECHECK_FILE or the default
func bakeFilePath() string {
	if bakeFile != "" {
		return bakeFile
	}
	if env := os.Getenv(bakeFileEnv); env != "" {
		return env
	}
	return defaultBake
}

// run executes the root command and maps errors to exit codes
func run(ctx context.Context, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	logger.Default().Close()
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			logger.Error("%v", ee.err)
		}
		return ee.code
	}

	// Flag and argument errors from cobra
	logger.Error("%v", err)
	return exitFailure
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
