// Package cli — build.go implements the "fwbuild build" command.
//
// The build command is the primary user-facing operation. It gathers
// the build facets (from flags, the settings store, the build history,
// and interactive prompts), then hands the validated inputs to the
// orchestrator, which drives the git flow and the external build tool.
//
// Orchestration steps:
//  1. Load settings store and project manifest
//  2. Resolve the five facets plus the optional parent reference
//  3. Resolve serial port and build command (flag > manifest > settings)
//  4. Run the orchestrator state machine (snapshot, branch, build, tag)
//  5. Append the attempt to the build history ledger
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/embedk/fwbuild/internal/config"
	"github.com/embedk/fwbuild/internal/gitops"
	"github.com/embedk/fwbuild/internal/history"
	"github.com/embedk/fwbuild/internal/model"
	"github.com/embedk/fwbuild/internal/orchestrator"
	"github.com/embedk/fwbuild/internal/project"
	"github.com/embedk/fwbuild/internal/snapshot"
	"github.com/embedk/fwbuild/internal/toolchain"
	"github.com/embedk/fwbuild/internal/ui"
)

// buildFlags holds the flag values for the build command.
// These are bound to cobra flags in NewBuildCommand.
type buildFlags struct {
	track      string // --track: track code (A, B, R)
	version    string // --version: major[.minor]
	env        string // --env: environment code (F, W, B, T, M)
	stability  string // --stability: stability code (s, t, e, p, d, x)
	change     string // --change: change type symbol
	parent     string // --parent: parent tag string, verbatim
	noParent   bool   // --no-parent: record no ancestry, skip the prompt
	port       string // --port: serial device for the build tool
	message    string // --message: commit message override
	suggest    bool   // --suggest: take the suggested version unprompted
	autoParent bool   // --auto-parent: take the last build as parent
	auto       bool   // --auto: fully non-interactive run
	yes        bool   // --yes: answer every gate with its default
	noConfirm  bool   // --no-confirm: alias of --yes for scripting
	noCommit   bool   // --no-commit: skip the commit step
	noFlash    bool   // --no-flash: compile only
	noMonitor  bool   // --no-monitor: flash but skip the serial monitor
	dryRun     bool   // --dry-run: print git intents, skip the build tool
	noRollback bool   // --no-rollback: leave the repository as-is on abort
	push       bool   // --push: offer to push the branch after tagging
}

// NewBuildCommand creates the "build" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewBuildCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run one versioned build attempt",
		Long: `Run one build attempt: compose the version tag from the build facets,
check out (or create) the matching major branch, invoke the build tool,
tag the result, and append it to the build history.

Facets not given as flags are prompted for, with defaults drawn from the
settings store and the previous build. With --auto, every prompt takes
its default and the version and parent are filled from the history.

Examples:
  fwbuild build
  fwbuild build --track A --version 10.3 --env F --stability t --change +
  fwbuild build --auto --no-monitor
  fwbuild build --dry-run --parent 'A9.1[F|s|+]'`,

		Args: cobra.NoArgs,

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.track, "track", "t", "", "Track code: A (active), B (beta), R (release)")
	cmd.Flags().StringVar(&flags.version, "version", "", "Version as major[.minor]")
	cmd.Flags().StringVarP(&flags.env, "env", "e", "", "Environment code: F, W, B, T, M")
	cmd.Flags().StringVarP(&flags.stability, "stability", "s", "", "Stability code: s, t, e, p, d, x")
	cmd.Flags().StringVarP(&flags.change, "change", "c", "", "Change type: + * % ! ~ = ?")
	cmd.Flags().StringVar(&flags.parent, "parent", "", "Parent tag this build derives from")
	cmd.Flags().BoolVar(&flags.noParent, "no-parent", false, "Record no ancestry, skip the parent prompt")
	cmd.Flags().StringVarP(&flags.port, "port", "p", "", "Serial port for the build tool")
	cmd.Flags().StringVarP(&flags.message, "message", "m", "", "Commit message (default: build <tag>)")
	cmd.Flags().BoolVar(&flags.suggest, "suggest", false, "Accept the suggested version without prompting")
	cmd.Flags().BoolVar(&flags.autoParent, "auto-parent", false, "Use the previous build's tag as parent")
	cmd.Flags().BoolVarP(&flags.auto, "auto", "a", false, "Non-interactive: suggested version, last parent, default answers")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Answer every confirmation with its default")
	cmd.Flags().BoolVar(&flags.noConfirm, "no-confirm", false, "Alias of --yes")
	cmd.Flags().BoolVar(&flags.noCommit, "no-commit", false, "Skip the pre-build commit step")
	cmd.Flags().BoolVar(&flags.noFlash, "no-flash", false, "Compile only, don't flash the device")
	cmd.Flags().BoolVar(&flags.noMonitor, "no-monitor", false, "Flash but don't attach the serial monitor")
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "Print git operations instead of running them; skip the build tool")
	cmd.Flags().BoolVar(&flags.noRollback, "no-rollback", false, "Leave the repository as-is when the build aborts")
	cmd.Flags().BoolVar(&flags.push, "push", false, "Offer to push the major branch after tagging")

	return cmd
}

// runBuild is the main orchestration function for the build command.
// It gathers inputs, wires the collaborators, and runs the state machine.
func runBuild(ctx context.Context, flags *buildFlags) error {
	out := ui.NewStderrOutput(verbose, quiet)

	settings, err := config.Load(settingsPath())
	if err != nil {
		return model.WrapCLIError(model.ExitFailure, "loading settings failed", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitFailure, "failed to get current directory", err)
	}

	manifest, err := project.Load(cwd)
	if err != nil {
		return model.WrapCLIError(model.ExitFailure, "loading project manifest failed", err)
	}

	ledger := history.New(stateDir(cwd))
	last, hasLast, err := ledger.Last()
	if err != nil {
		out.Warnf("could not read build history: %v", err)
		hasLast = false
	}

	// --auto subsumes the individual automation flags.
	if flags.auto {
		flags.suggest = true
		flags.autoParent = true
	}

	var prompt ui.Prompter = ui.NewTerminal()
	if flags.auto || flags.yes || flags.noConfirm {
		prompt = ui.Auto{}
	}

	facets, err := resolveFacets(flags, settings, manifest, last, hasLast, prompt)
	if err != nil {
		return err
	}

	command, port, mode := resolveTool(flags, settings, manifest)

	var git gitops.Git = gitops.NewCLI(cwd)
	if flags.dryRun {
		git = gitops.NewDryRun(git, os.Stderr)
	}

	orch := orchestrator.New(git, snapshot.New(git, out), prompt,
		&toolchain.Exec{Command: command, Dir: cwd, Out: out, Progress: !verbose},
		ledger, out, orchestrator.Options{
			Facets:        facets,
			Brackets:      bracketStyle(),
			Port:          port,
			Mode:          mode,
			CommitMessage: flags.message,
			SkipCommit:    flags.noCommit,
			DryRun:        flags.dryRun,
			Push:          flags.push,
			SkipRollback:  flags.noRollback,
		})
	return orch.Run(ctx)
}

// resolveTool picks the build command, serial port and invocation mode.
// Precedence for command and port: flag, then manifest, then settings.
func resolveTool(flags *buildFlags, settings config.Settings,
	manifest *project.Manifest) (command []string, port string, mode toolchain.Mode) {
	command = toolchain.DefaultCommand
	if manifest != nil && len(manifest.BuildCommand) > 0 {
		command = manifest.BuildCommand
	}

	port = flags.port
	if port == "" && manifest != nil {
		port = manifest.Port
	}
	if port == "" {
		port = settings.DefaultPort
	}

	mode = toolchain.ModeMonitor
	switch {
	case flags.noFlash:
		mode = toolchain.ModeBuild
	case flags.noMonitor:
		mode = toolchain.ModeFlash
	}
	return command, port, mode
}

// resolveFacets fills every facet from, in order: its flag, the
// automation shortcuts, and an interactive prompt whose default comes
// from the settings store and the previous build. Parse errors are
// fatal; deeper grammar checks run in the orchestrator's validate step.
func resolveFacets(flags *buildFlags, settings config.Settings, manifest *project.Manifest,
	last history.Record, hasLast bool, prompt ui.Prompter) (model.BuildFacets, error) {
	var facets model.BuildFacets
	var err error

	rawTrack := flags.track
	if rawTrack == "" {
		rawTrack = prompt.Input("track (A=active, B=beta, R=release)", settings.DefaultTrack.String())
	}
	facets.Track, err = model.ParseTrack(rawTrack)
	if err != nil {
		return facets, model.WrapCLIError(model.ExitFailure, "invalid --track", err)
	}

	suggested := model.SuggestVersion("")
	if hasLast {
		suggested = model.SuggestVersion(last.Tag)
	}
	rawVersion := flags.version
	if rawVersion == "" && flags.suggest {
		rawVersion = suggested
	}
	if rawVersion == "" {
		rawVersion = prompt.Input("version (major.minor)", suggested)
	}
	facets.Version, err = model.ParseVersion(rawVersion)
	if err != nil {
		return facets, model.WrapCLIError(model.ExitFailure, "invalid --version", err)
	}

	rawEnv := flags.env
	if rawEnv == "" {
		rawEnv = prompt.Input("environment (F=firmware, W=web, B=backend, T=tools, M=multi)",
			settings.DefaultEnv.String())
	}
	facets.Env, err = model.ParseEnvironment(rawEnv)
	if err != nil {
		return facets, model.WrapCLIError(model.ExitFailure, "invalid --env", err)
	}
	if manifest != nil && !manifest.AllowsEnv(facets.Env) {
		return facets, model.NewCLIError(model.ExitFailure,
			fmt.Sprintf("environment %s (%s) is not listed in %s",
				facets.Env, facets.Env.Describe(), project.ManifestName))
	}

	rawStability := flags.stability
	if rawStability == "" {
		rawStability = prompt.Input("stability (s=stable, t=test, e=experimental, p=prototype, d=debug, x=broken)",
			model.StabilityTest.String())
	}
	facets.Stability, err = model.ParseStability(rawStability)
	if err != nil {
		return facets, model.WrapCLIError(model.ExitFailure, "invalid --stability", err)
	}

	rawChange := flags.change
	if rawChange == "" {
		rawChange = prompt.Input("change type (+=feature, *=improvement, %=refactor, !=breaking, ~=fix, ==maintenance, ?=unspecified)",
			model.ChangeFeature.String())
	}
	facets.Change, err = model.ParseChangeType(rawChange)
	if err != nil {
		return facets, model.WrapCLIError(model.ExitFailure, "invalid --change", err)
	}

	switch {
	case flags.noParent:
		facets.Parent = ""
	case flags.parent != "":
		facets.Parent = flags.parent
	case flags.autoParent && hasLast:
		facets.Parent = last.Tag
	case flags.autoParent:
		facets.Parent = ""
	default:
		facets.Parent = prompt.Input("parent tag (empty for none)", "")
	}

	return facets, nil
}
