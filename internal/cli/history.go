// Package cli — history.go implements the "fwbuild history" command.
//
// History is read-only: it renders the append-only ledger the build
// command maintains under the project's .fwbuild directory. Output is
// text by default, with JSON and YAML formats for machine consumption.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/embedk/fwbuild/internal/history"
	"github.com/embedk/fwbuild/internal/model"
)

// historyFlags holds the flag values for the history command.
type historyFlags struct {
	last   bool   // --last: only the most recent record
	format string // --format: text, json or yaml
}

// NewHistoryCommand creates the "history" cobra command.
func NewHistoryCommand() *cobra.Command {
	flags := &historyFlags{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the build history of the current project",
		Long: `Show the build history ledger of the current project.

Each completed (or dry-run) build attempt appears as one record with its
timestamp, composed tag, and commit hash. Unparseable ledger lines are
skipped, never fatal.

Examples:
  fwbuild history
  fwbuild history --last
  fwbuild history --format json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.last, "last", false, "Show only the most recent build")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format: text, json or yaml")

	return cmd
}

// runHistory loads the ledger and renders it in the requested format.
func runHistory(w io.Writer, flags *historyFlags) error {
	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitFailure, "failed to get current directory", err)
	}

	ledger := history.New(stateDir(cwd))
	records, err := ledger.All()
	if err != nil {
		return model.WrapCLIError(model.ExitFailure, "reading build history failed", err)
	}

	if flags.last && len(records) > 0 {
		records = records[len(records)-1:]
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no builds recorded yet")
		return nil
	}

	return renderRecords(w, records, flags.format)
}

// renderRecords writes records in the requested format to w.
func renderRecords(w io.Writer, records []history.Record, format string) error {
	switch format {
	case "text":
		for _, r := range records {
			fmt.Fprintln(w, r.Line())
		}
		return nil

	case "json":
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return model.WrapCLIError(model.ExitFailure, "encoding history failed", err)
		}
		fmt.Fprintln(w, string(data))
		return nil

	case "yaml":
		data, err := yaml.Marshal(records)
		if err != nil {
			return model.WrapCLIError(model.ExitFailure, "encoding history failed", err)
		}
		fmt.Fprint(w, string(data))
		return nil

	default:
		return model.NewCLIError(model.ExitFailure,
			fmt.Sprintf("unknown format %q (valid: text, json, yaml)", format))
	}
}
