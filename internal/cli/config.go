// Package cli — config.go implements the "fwbuild config" command.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/embedk/fwbuild/internal/config"
	"github.com/embedk/fwbuild/internal/model"
)

// configFlags holds the flag values for the config command.
type configFlags struct {
	init bool // --init: reset the store to built-in defaults
}

// NewConfigCommand creates the "config" cobra command.
func NewConfigCommand() *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the settings store",
		Long: `Show the effective settings, seeding the store with built-in defaults
when it does not exist yet. With --init the store is rewritten with the
defaults even when it already exists.

The store is a flat KEY=value file; edit it directly to change defaults.

Examples:
  fwbuild config
  fwbuild config --init
  fwbuild config --config ./team.env`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.init, "init", false, "Rewrite the store with built-in defaults")

	return cmd
}

// runConfig prints the effective settings as the store's own KEY=value
// lines, so the output can be pasted back into the file.
func runConfig(w io.Writer, flags *configFlags) error {
	path := settingsPath()

	if flags.init {
		if err := config.Write(config.Defaults(), path); err != nil {
			return model.WrapCLIError(model.ExitFailure, "initializing settings failed", err)
		}
	}

	settings, err := config.Load(path)
	if err != nil {
		return model.WrapCLIError(model.ExitFailure, "loading settings failed", err)
	}

	fmt.Fprintf(w, "# %s\n", path)
	fmt.Fprintf(w, "%s=%s\n", config.KeyDefaultTrack, settings.DefaultTrack)
	fmt.Fprintf(w, "%s=%s\n", config.KeyDefaultEnv, settings.DefaultEnv)
	fmt.Fprintf(w, "%s=%s\n", config.KeyDefaultPort, settings.DefaultPort)
	fmt.Fprintf(w, "%s=%s\n", config.KeySeriesStrategy, settings.SeriesStrategy)
	return nil
}
