// Package cli implements the cobra-based CLI commands for fwbuild.
//
// Each subcommand (build, history, config) is defined in its own file
// within this package. This file defines the root command that serves as
// the parent for all subcommands and handles global flags.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/embedk/fwbuild/internal/config"
	"github.com/embedk/fwbuild/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// verbose enables state-transition tracing and other detail output.
	verbose bool

	// quiet suppresses informational output. Warnings and errors still
	// print. Verbose wins when both are set.
	quiet bool

	// asciiBrackets renders parent references with << >> instead of the
	// default Unicode ⟪ ⟫, for terminals and tools that cannot display
	// the latter.
	asciiBrackets bool

	// configPath overrides the settings file location.
	configPath string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action — it only provides
// help text and global flags. Actual functionality is provided by
// subcommands (build, history, config).
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fwbuild",
		Short: "Versioned build orchestration for embedded firmware projects",
		Long: `fwbuild drives one firmware build attempt end to end: it composes a
structured version tag from the build's facets, resolves the matching
major branch, snapshots the repository for rollback, invokes the
project's build toolchain, and records the attempt in the build history.

Every destructive step is gated behind a confirmation prompt; any halt
after the snapshot is taken restores the repository to where it was.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// Execute formats them itself.
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	// PersistentFlags are inherited by all subcommands. This is the cobra
	// mechanism for global flags — any flag defined here is automatically
	// available in every subcommand without re-declaration.
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().BoolVar(&asciiBrackets, "ascii-brackets", false,
		"Render parent references with << >> instead of ⟪ ⟫")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Settings file (default: "+config.DefaultPath()+")")

	// Register subcommands. Each subcommand is defined in its own file
	// (build.go, history.go, config.go) and returns a *cobra.Command.
	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewHistoryCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// It inspects errors returned by cobra commands and translates them
// into OS exit codes. CLIError values carry their own exit code; other
// errors default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		// Check if the error is a CLIError with a specific exit code.
		// errors.As would also work here, but a type assertion is simpler
		// for this single-level check; the orchestrator always returns
		// the CLIError itself, not a wrapper around one.
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitFailure))
	}
}

// printError outputs an error as "Error: <message>" on stderr.
func printError(message string, underlying error) {
	if underlying != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	}
}

// bracketStyle maps the --ascii-brackets flag to the model style.
func bracketStyle() model.BracketStyle {
	if asciiBrackets {
		return model.BracketsASCII
	}
	return model.BracketsUnicode
}

// settingsPath resolves the effective settings file location.
func settingsPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

// stateDirName is the per-project directory holding the build history
// ledger and the last-build marker.
const stateDirName = ".fwbuild"

// stateDir returns the project state directory under dir.
func stateDir(dir string) string {
	return filepath.Join(dir, stateDirName)
}
