package gitops

import (
	"fmt"
	"io"
)

// DryRun decorates a Git implementation so that every mutating
// operation prints its intent instead of touching the repository.
// Read-only operations delegate to the wrapped implementation, which
// keeps branch-existence checks and ahead counts meaningful during a
// dry run against a real repository.
type DryRun struct {
	// Real answers all read-only queries.
	Real Git

	// Out receives one "[dry-run] git ..." line per suppressed mutation.
	Out io.Writer
}

// NewDryRun wraps real so mutations are printed to out instead of run.
func NewDryRun(real Git, out io.Writer) *DryRun {
	return &DryRun{Real: real, Out: out}
}

func (d *DryRun) intent(format string, args ...any) {
	fmt.Fprintf(d.Out, "[dry-run] git %s\n", fmt.Sprintf(format, args...))
}

// Read-only queries pass through unchanged.

func (d *DryRun) IsRepo() bool                              { return d.Real.IsRepo() }
func (d *DryRun) HasCommits() bool                          { return d.Real.HasCommits() }
func (d *DryRun) CurrentBranch() (string, error)            { return d.Real.CurrentBranch() }
func (d *DryRun) Head() (string, error)                     { return d.Real.Head() }
func (d *DryRun) BranchExists(name string) bool             { return d.Real.BranchExists(name) }
func (d *DryRun) TagExists(name string) bool                { return d.Real.TagExists(name) }
func (d *DryRun) HasChanges() (bool, error)                 { return d.Real.HasChanges() }
func (d *DryRun) AheadCount(branch, base string) (int, error) {
	return d.Real.AheadCount(branch, base)
}

// Mutations are suppressed and printed.

func (d *DryRun) Init(initialBranch string) error {
	d.intent("init -b %s", initialBranch)
	return nil
}

func (d *DryRun) CreateBranch(name, startPoint string) error {
	d.intent("branch %s %s", name, startPoint)
	return nil
}

func (d *DryRun) Checkout(name string) error {
	d.intent("checkout %s", name)
	return nil
}

func (d *DryRun) CheckoutForce(name string) error {
	d.intent("checkout -f %s", name)
	return nil
}

func (d *DryRun) CheckoutNew(name, startPoint string) error {
	d.intent("checkout -b %s %s", name, startPoint)
	return nil
}

func (d *DryRun) ResetHard(commit string) error {
	d.intent("reset --hard %s", commit)
	return nil
}

func (d *DryRun) Merge(branch string) error {
	d.intent("merge --no-edit %s", branch)
	return nil
}

func (d *DryRun) StageAll() error {
	d.intent("add -A")
	return nil
}

// Commit reports an empty hash; the orchestrator records the dry-run
// sentinel in the ledger instead of a commit hash.
func (d *DryRun) Commit(message string, allowEmpty bool) (string, error) {
	d.intent("commit -m %q", message)
	return "", nil
}

func (d *DryRun) Tag(name, message string, force bool) error {
	d.intent("tag -a %s -m %q", name, message)
	return nil
}

func (d *DryRun) Push(branch string) error {
	d.intent("push --set-upstream origin %s", branch)
	return nil
}
