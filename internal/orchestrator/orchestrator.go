package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/embedk/fwbuild/internal/gitops"
	"github.com/embedk/fwbuild/internal/history"
	"github.com/embedk/fwbuild/internal/model"
	"github.com/embedk/fwbuild/internal/snapshot"
	"github.com/embedk/fwbuild/internal/toolchain"
	"github.com/embedk/fwbuild/internal/ui"
)

// Options is the immutable per-attempt configuration threaded into the
// orchestrator at construction. There is no ambient global state.
type Options struct {
	// Facets are the raw inputs of this build attempt. Validation is
	// the orchestrator's first transition, so callers may pass
	// unvalidated values.
	Facets model.BuildFacets

	// Brackets selects the parent-wrapping style for the composed tag.
	Brackets model.BracketStyle

	// Port is the serial device handed to the build tool.
	Port string

	// Mode selects build / build+flash / build+flash+monitor.
	Mode toolchain.Mode

	// CommitMessage overrides the auto-generated commit message.
	CommitMessage string

	// SkipCommit suppresses the commit step entirely.
	SkipCommit bool

	// DryRun means the injected Git is a dry-run decorator and the
	// build tool must not be invoked; the ledger records the dry-run
	// sentinel in place of a commit hash.
	DryRun bool

	// Push enables the opt-in push step after tagging.
	Push bool

	// SkipRollback leaves the repository as-is on abort paths.
	SkipRollback bool

	// IntegrationBranch is the default integration branch, normally "main".
	IntegrationBranch string
}

// Orchestrator drives one build attempt through the state machine.
type Orchestrator struct {
	git    gitops.Git
	snap   *snapshot.Manager
	prompt ui.Prompter
	tool   toolchain.Invoker
	ledger *history.Ledger
	out    *ui.Output
	opts   Options

	// Derived once during the early states.
	tag          model.VersionTag
	tagString    string
	targetBranch string
	parentBranch string

	// commitRef is the hash or sentinel recorded in the ledger.
	commitRef string
}

// New wires an Orchestrator. An empty IntegrationBranch defaults to "main".
func New(git gitops.Git, snap *snapshot.Manager, prompt ui.Prompter,
	tool toolchain.Invoker, ledger *history.Ledger, out *ui.Output, opts Options) *Orchestrator {
	if opts.IntegrationBranch == "" {
		opts.IntegrationBranch = "main"
	}
	return &Orchestrator{
		git:    git,
		snap:   snap,
		prompt: prompt,
		tool:   tool,
		ledger: ledger,
		out:    out,
		opts:   opts,
	}
}

// Run executes the flow from StateInit to StateDone. On error it
// performs the rollback contract first: every halt after the snapshot
// is armed restores the snapshot before the error propagates, unless
// rollback is suppressed by configuration.
func (o *Orchestrator) Run(ctx context.Context) error {
	state := StateInit
	for state != StateDone {
		next, err := o.step(ctx, state)
		if err != nil {
			return o.abort(err)
		}
		o.out.Verbosef("state %s -> %s", state, next)
		state = next
	}

	o.out.Successf("build %s complete on branch %s", o.tagString, o.targetBranch)
	return nil
}

// step dispatches one transition.
func (o *Orchestrator) step(ctx context.Context, s State) (State, error) {
	switch s {
	case StateInit:
		return o.validate()
	case StateValidated:
		return o.composeTag()
	case StateTagComposed:
		return o.bootstrapRepo()
	case StateRepoBootstrapped:
		return o.armSnapshot()
	case StateSnapshotted:
		return o.resolveParent()
	case StateParentResolved:
		return o.checkCrossTrack()
	case StateCrossTrackChecked:
		return o.prepareBranch()
	case StateBranchReady:
		return o.mergeParent()
	case StateMerged:
		return o.commitChanges()
	case StateCommitted:
		return o.invokeBuild(ctx)
	case StateBuildInvoked:
		return o.createTag()
	case StateTagged:
		return o.pushBranch()
	case StatePushed:
		return o.promoteStable()
	case StatePromoted:
		return o.finalize()
	default:
		return StateAborted, model.NewCLIError(model.ExitFailure,
			fmt.Sprintf("unexpected state %s", s))
	}
}

// abort applies the rollback contract and normalizes the error into a
// CLIError carrying exit code 1. The error message itself is printed by
// the CLI layer, not here.
func (o *Orchestrator) abort(err error) error {
	if o.snap.Armed() {
		if o.opts.SkipRollback {
			o.out.Warnf("rollback suppressed by configuration; repository left as-is")
		} else if rbErr := o.snap.Rollback(); rbErr != nil {
			o.out.Errorf("rollback failed: %v", rbErr)
		}
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return err
	}
	return model.WrapCLIError(model.ExitFailure, "build aborted", err)
}

// validate checks every facet grammar. A violation is fatal before any
// git operation runs.
func (o *Orchestrator) validate() (State, error) {
	if err := o.opts.Facets.Validate(); err != nil {
		return StateAborted, model.WrapCLIError(model.ExitFailure, "invalid build facets", err)
	}
	return StateValidated, nil
}

// composeTag derives the canonical tag string and the target branch.
func (o *Orchestrator) composeTag() (State, error) {
	o.tag = model.ComposeTag(o.opts.Facets)
	o.tagString = o.tag.Render(o.opts.Brackets)
	o.targetBranch = o.tag.Branch()

	o.out.Infof("composed tag %s (branch %s)", o.tagString, o.targetBranch)
	return StateTagComposed, nil
}

// bootstrapRepo makes sure a repository with an initial commit and the
// integration branch exists. Idempotent when one already does.
func (o *Orchestrator) bootstrapRepo() (State, error) {
	if !o.git.IsRepo() {
		o.out.Infof("no repository found; initializing with branch %s", o.opts.IntegrationBranch)
		if err := o.git.Init(o.opts.IntegrationBranch); err != nil {
			return StateAborted, model.WrapCLIError(model.ExitFailure, "repository bootstrap failed", err)
		}
	}
	if !o.git.HasCommits() {
		if _, err := o.git.Commit("chore: initialize repository", true); err != nil &&
			!errors.Is(err, model.ErrNothingToCommit) {
			return StateAborted, model.WrapCLIError(model.ExitFailure, "initial commit failed", err)
		}
	}
	return StateRepoBootstrapped, nil
}

// armSnapshot captures the single rollback point for the rest of the
// flow. A dry run against a directory that is not yet a repository has
// nothing to protect and skips arming.
func (o *Orchestrator) armSnapshot() (State, error) {
	if !o.git.IsRepo() || !o.git.HasCommits() {
		o.out.Verbosef("skipping snapshot: repository has no commits yet")
		return StateSnapshotted, nil
	}
	if err := o.snap.Snapshot(); err != nil {
		return StateAborted, model.WrapCLIError(model.ExitFailure, "snapshot failed", err)
	}
	return StateSnapshotted, nil
}

// resolveParent maps the parent tag to its major branch and, when that
// branch is missing locally, offers to create it. Declining is
// recoverable: the build may still reference a remote-only parent.
func (o *Orchestrator) resolveParent() (State, error) {
	parent := o.opts.Facets.Parent
	if parent == "" {
		return StateParentResolved, nil
	}

	branch, err := model.BranchOfTag(parent)
	if err != nil {
		return StateAborted, model.WrapCLIError(model.ExitFailure, "unresolvable parent reference", err)
	}
	o.parentBranch = branch
	o.out.Verbosef("parent %s resolves to branch %s", parent, branch)

	if o.git.BranchExists(branch) {
		return StateParentResolved, nil
	}

	question := fmt.Sprintf("parent branch %s does not exist locally; create it from %s?",
		branch, o.opts.IntegrationBranch)
	if o.prompt.Confirm(question, true) {
		if err := o.git.CreateBranch(branch, o.opts.IntegrationBranch); err != nil {
			return StateAborted, model.WrapCLIError(model.ExitFailure, "creating parent branch failed", err)
		}
		o.out.Infof("created parent branch %s", branch)
	} else {
		o.out.Warnf("continuing without local parent branch %s (it may exist on a remote)", branch)
		o.parentBranch = ""
	}
	return StateParentResolved, nil
}

// checkCrossTrack requires explicit confirmation when the parent's
// track differs from the build's track; declining aborts.
func (o *Orchestrator) checkCrossTrack() (State, error) {
	parent := o.opts.Facets.Parent
	if parent == "" {
		return StateCrossTrackChecked, nil
	}

	parentTrack, err := model.TrackOfTag(parent)
	if err != nil {
		return StateAborted, model.WrapCLIError(model.ExitFailure, "unresolvable parent track", err)
	}
	if parentTrack == o.opts.Facets.Track {
		return StateCrossTrackChecked, nil
	}

	o.out.Warnf("cross-track build: deriving %s (%s) from parent %s (%s)",
		o.tagString, o.opts.Facets.Track.Describe(), parent, parentTrack.Describe())
	if !o.prompt.Confirm("continue with this cross-track build?", false) {
		return StateAborted, model.WrapCLIError(model.ExitFailure,
			"cross-track build declined", model.ErrDeclined)
	}
	return StateCrossTrackChecked, nil
}

// prepareBranch checks out the target branch, creating it from the
// integration branch when it does not exist. Exactly one of the two
// happens.
func (o *Orchestrator) prepareBranch() (State, error) {
	if o.git.BranchExists(o.targetBranch) {
		if err := o.git.Checkout(o.targetBranch); err != nil {
			return StateAborted, model.WrapCLIError(model.ExitFailure, "branch checkout failed", err)
		}
		o.out.Verbosef("checked out existing branch %s", o.targetBranch)
	} else {
		o.out.Infof("creating branch %s from %s", o.targetBranch, o.opts.IntegrationBranch)
		if err := o.git.CheckoutNew(o.targetBranch, o.opts.IntegrationBranch); err != nil {
			return StateAborted, model.WrapCLIError(model.ExitFailure, "branch creation failed", err)
		}
	}
	return StateBranchReady, nil
}

// mergeParent offers to merge the parent branch when it has commits the
// target lacks. Fast-forward is preferred by the git layer; a conflict
// is fatal and rolls back.
func (o *Orchestrator) mergeParent() (State, error) {
	if o.parentBranch == "" || !o.git.BranchExists(o.parentBranch) ||
		!o.git.BranchExists(o.targetBranch) {
		return StateMerged, nil
	}

	ahead, err := o.git.AheadCount(o.parentBranch, o.targetBranch)
	if err != nil {
		return StateAborted, model.WrapCLIError(model.ExitFailure, "comparing parent branch failed", err)
	}
	if ahead == 0 {
		o.out.Verbosef("parent branch %s has no commits the target lacks", o.parentBranch)
		return StateMerged, nil
	}

	question := fmt.Sprintf("merge parent branch %s into %s (%d commit(s) ahead)?",
		o.parentBranch, o.targetBranch, ahead)
	if !o.prompt.Confirm(question, true) {
		o.out.Infof("skipping parent merge")
		return StateMerged, nil
	}

	if err := o.git.Merge(o.parentBranch); err != nil {
		if errors.Is(err, model.ErrMergeConflict) {
			return StateAborted, model.WrapCLIError(model.ExitFailure,
				"merge conflict between parent and target branch", err)
		}
		return StateAborted, model.WrapCLIError(model.ExitFailure, "parent merge failed", err)
	}
	o.out.Infof("merged %s into %s", o.parentBranch, o.targetBranch)
	return StateMerged, nil
}

// commitChanges optionally stages and commits the working tree.
// Declining, or a clean tree, records the no-commit sentinel instead.
func (o *Orchestrator) commitChanges() (State, error) {
	o.commitRef = history.CommitNone
	if o.opts.DryRun {
		o.commitRef = history.CommitDryRun
	}
	if o.opts.SkipCommit {
		o.out.Verbosef("commit step skipped by configuration")
		return StateCommitted, nil
	}

	dirty, err := o.git.HasChanges()
	if err != nil {
		return StateAborted, model.WrapCLIError(model.ExitFailure, "inspecting working tree failed", err)
	}
	if !dirty {
		o.out.Verbosef("working tree clean; nothing to commit")
		return StateCommitted, nil
	}

	message := o.opts.CommitMessage
	if message == "" {
		message = "build " + o.tagString
	}
	if !o.prompt.Confirm(fmt.Sprintf("commit working tree changes as %q?", message), true) {
		o.out.Infof("proceeding without a commit")
		return StateCommitted, nil
	}

	if err := o.git.StageAll(); err != nil {
		return StateAborted, model.WrapCLIError(model.ExitFailure, "staging changes failed", err)
	}
	hash, err := o.git.Commit(message, false)
	switch {
	case errors.Is(err, model.ErrNothingToCommit):
		o.out.Warnf("nothing to commit after staging")
	case err != nil:
		return StateAborted, model.WrapCLIError(model.ExitFailure, "commit failed", err)
	case hash != "":
		o.commitRef = hash
		o.out.Infof("committed %.8s", hash)
	}
	return StateCommitted, nil
}

// invokeBuild hands off to the external build tool. A non-zero exit is
// fatal and rolls back.
func (o *Orchestrator) invokeBuild(ctx context.Context) (State, error) {
	if o.opts.DryRun {
		o.out.Infof("[dry-run] would invoke build tool (port %s, mode %s)", o.opts.Port, o.opts.Mode)
		return StateBuildInvoked, nil
	}

	if err := o.tool.Invoke(ctx, o.opts.Port, o.opts.Mode); err != nil {
		return StateAborted, model.WrapCLIError(model.ExitFailure, "external build failed", err)
	}
	o.out.Successf("build tool finished successfully")
	return StateBuildInvoked, nil
}

// createTag records the annotated tag. Failure here (typically: the tag
// already exists) is logged but never fatal.
func (o *Orchestrator) createTag() (State, error) {
	name := o.tag.AnnotatedTagName()
	if o.git.TagExists(name) {
		o.out.Warnf("tag %s already exists; leaving it in place", name)
		return StateTagged, nil
	}
	if err := o.git.Tag(name, o.tagString, false); err != nil {
		o.out.Warnf("could not create tag %s: %v", name, err)
		return StateTagged, nil
	}
	o.out.Infof("created annotated tag %s", name)
	return StateTagged, nil
}

// pushBranch is the opt-in push step. It is gated on its own
// confirmation and never fatal.
func (o *Orchestrator) pushBranch() (State, error) {
	if !o.opts.Push {
		return StatePushed, nil
	}
	if !o.prompt.Confirm(fmt.Sprintf("push %s to origin?", o.targetBranch), true) {
		o.out.Infof("skipping push")
		return StatePushed, nil
	}
	if err := o.git.Push(o.targetBranch); err != nil {
		o.out.Warnf("push failed: %v", err)
	} else {
		o.out.Infof("pushed %s", o.targetBranch)
	}
	return StatePushed, nil
}

// promoteStable offers, for stability "s" builds, to merge the target
// branch into the integration branch and re-tag there. Declining is
// valid and terminal at Done regardless.
func (o *Orchestrator) promoteStable() (State, error) {
	if o.opts.Facets.Stability != model.StabilityStable {
		return StatePromoted, nil
	}

	question := fmt.Sprintf("stable build: merge %s into %s and re-tag?",
		o.targetBranch, o.opts.IntegrationBranch)
	if !o.prompt.Confirm(question, true) {
		o.out.Infof("skipping stable promotion")
		return StatePromoted, nil
	}

	if err := o.git.Checkout(o.opts.IntegrationBranch); err != nil {
		return StateAborted, model.WrapCLIError(model.ExitFailure, "integration checkout failed", err)
	}
	if err := o.git.Merge(o.targetBranch); err != nil {
		if errors.Is(err, model.ErrMergeConflict) {
			return StateAborted, model.WrapCLIError(model.ExitFailure,
				"merge conflict during stable promotion", err)
		}
		return StateAborted, model.WrapCLIError(model.ExitFailure, "stable promotion merge failed", err)
	}

	// The tag already exists from the Tagged state; move it to the
	// promoted position so the integration branch carries it too.
	if err := o.git.Tag(o.tag.AnnotatedTagName(), o.tagString, true); err != nil {
		o.out.Warnf("could not re-tag on %s: %v", o.opts.IntegrationBranch, err)
	}
	o.out.Successf("promoted %s to %s", o.tagString, o.opts.IntegrationBranch)
	return StatePromoted, nil
}

// finalize appends exactly one ledger record and rewrites the build
// marker. Ledger trouble after a successful build is a warning — the
// build itself must not be reported as failed.
func (o *Orchestrator) finalize() (State, error) {
	record := history.Record{
		Timestamp: time.Now(),
		Tag:       o.tagString,
		Commit:    o.commitRef,
	}
	if record.Commit == "" {
		record.Commit = history.CommitUnknown
	}

	if err := o.ledger.Append(record); err != nil {
		o.out.Warnf("could not append history record: %v", err)
	}
	if err := o.ledger.WriteMarker(o.tagString); err != nil {
		o.out.Warnf("could not write build marker: %v", err)
	}
	return StateDone, nil
}
