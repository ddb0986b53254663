package gitops

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/embedk/fwbuild/internal/model"
)

// Git is the repository capability consumed by the orchestrator and the
// snapshot manager. The CLI type implements it against a real
// repository; tests substitute a fake.
type Git interface {
	// IsRepo reports whether the directory is inside a git work tree.
	IsRepo() bool

	// Init initializes a repository with the given initial branch.
	Init(initialBranch string) error

	// HasCommits reports whether HEAD resolves to at least one commit.
	HasCommits() bool

	// CurrentBranch returns the checked-out branch name ("HEAD" when detached).
	CurrentBranch() (string, error)

	// Head returns the full commit hash HEAD points at.
	Head() (string, error)

	// BranchExists reports whether a local branch with the name exists.
	BranchExists(name string) bool

	// CreateBranch creates a branch at the given start point without
	// checking it out.
	CreateBranch(name, startPoint string) error

	// Checkout switches the work tree to an existing branch.
	Checkout(name string) error

	// CheckoutForce switches branches discarding local modifications.
	CheckoutForce(name string) error

	// CheckoutNew creates a branch at the start point and checks it out.
	CheckoutNew(name, startPoint string) error

	// ResetHard forcibly resets the current branch and work tree to commit.
	ResetHard(commit string) error

	// AheadCount returns how many commits branch has that base does not.
	AheadCount(branch, base string) (int, error)

	// Merge merges branch into the current branch, fast-forwarding when
	// possible. A conflicted merge is aborted and reported as
	// model.ErrMergeConflict.
	Merge(branch string) error

	// HasChanges reports whether the work tree or index is dirty.
	HasChanges() (bool, error)

	// StageAll stages every change in the work tree.
	StageAll() error

	// Commit records a commit and returns its hash. With a clean index
	// and allowEmpty false it returns model.ErrNothingToCommit.
	Commit(message string, allowEmpty bool) (string, error)

	// Tag creates an annotated tag. With force true an existing tag of
	// the same name is moved.
	Tag(name, message string, force bool) error

	// TagExists reports whether a tag with the name exists.
	TagExists(name string) bool

	// Push pushes the branch to origin, setting upstream.
	Push(branch string) error
}

// CLI implements Git by invoking the git command line tool.
type CLI struct {
	// Dir is the repository directory every command runs against.
	Dir string
}

// NewCLI creates a CLI rooted at the given directory.
func NewCLI(dir string) *CLI {
	return &CLI{Dir: dir}
}

// IsRepo reports whether Dir is inside a git work tree.
func (g *CLI) IsRepo() bool {
	out, err := g.run("rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// Init initializes a repository in Dir with the given initial branch.
func (g *CLI) Init(initialBranch string) error {
	_, err := g.run("init", "-b", initialBranch)
	return err
}

// HasCommits reports whether HEAD resolves to a commit. A freshly
// initialized repository has a branch ref but no commit yet.
func (g *CLI) HasCommits() bool {
	_, err := g.run("rev-parse", "--verify", "HEAD")
	return err == nil
}

// CurrentBranch returns the short name of the checked-out branch.
func (g *CLI) CurrentBranch() (string, error) {
	out, err := g.run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Head returns the commit hash HEAD points at.
func (g *CLI) Head() (string, error) {
	out, err := g.run("rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// BranchExists reports whether a local branch exists. The refs/heads
// prefix keeps a tag of the same name from satisfying the check.
func (g *CLI) BranchExists(name string) bool {
	_, err := g.run("rev-parse", "--verify", "refs/heads/"+name)
	return err == nil
}

// CreateBranch creates a branch at startPoint without checking it out.
func (g *CLI) CreateBranch(name, startPoint string) error {
	_, err := g.run("branch", name, startPoint)
	return err
}

// Checkout switches the work tree to an existing branch.
func (g *CLI) Checkout(name string) error {
	_, err := g.run("checkout", name)
	return err
}

// CheckoutForce switches branches discarding local modifications.
func (g *CLI) CheckoutForce(name string) error {
	_, err := g.run("checkout", "-f", name)
	return err
}

// CheckoutNew creates a branch at startPoint and checks it out.
func (g *CLI) CheckoutNew(name, startPoint string) error {
	_, err := g.run("checkout", "-b", name, startPoint)
	return err
}

// ResetHard forcibly resets the current branch and work tree to commit.
func (g *CLI) ResetHard(commit string) error {
	_, err := g.run("reset", "--hard", commit)
	return err
}

// AheadCount returns the number of commits reachable from branch but
// not from base, i.e. how far branch is ahead.
func (g *CLI) AheadCount(branch, base string) (int, error) {
	out, err := g.run("rev-list", "--count", base+".."+branch)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list output %q: %w", out, err)
	}
	return n, nil
}

// Merge merges branch into the current branch. Git fast-forwards by
// default when possible, which is exactly the preference the flow
// wants; a true merge commit is the fallback. A conflicted merge is
// aborted immediately and surfaced as model.ErrMergeConflict — the flow
// never attempts conflict resolution.
func (g *CLI) Merge(branch string) error {
	out, err := g.run("merge", "--no-edit", branch)
	if err == nil {
		return nil
	}

	if strings.Contains(out, "CONFLICT") || strings.Contains(err.Error(), "CONFLICT") {
		// Leave the work tree exactly as it was before the merge started.
		_, _ = g.run("merge", "--abort")
		return fmt.Errorf("merging %s: %w", branch, model.ErrMergeConflict)
	}
	return err
}

// HasChanges reports whether the work tree or index has any change,
// including untracked files.
func (g *CLI) HasChanges() (bool, error) {
	out, err := g.run("status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// StageAll stages every change in the work tree.
func (g *CLI) StageAll() error {
	_, err := g.run("add", "-A")
	return err
}

// Commit records a commit and returns the new HEAD hash. A clean index
// yields model.ErrNothingToCommit unless allowEmpty is set (used for
// the bootstrap commit of a brand-new repository).
func (g *CLI) Commit(message string, allowEmpty bool) (string, error) {
	args := []string{"commit", "-m", message}
	if allowEmpty {
		args = append(args, "--allow-empty")
	}

	out, err := g.run(args...)
	if err != nil {
		if strings.Contains(out, "nothing to commit") ||
			strings.Contains(err.Error(), "nothing to commit") {
			return "", model.ErrNothingToCommit
		}
		return "", err
	}
	return g.Head()
}

// Tag creates an annotated tag named name with the given message.
func (g *CLI) Tag(name, message string, force bool) error {
	args := []string{"tag", "-a", name, "-m", message}
	if force {
		args = append(args, "-f")
	}
	_, err := g.run(args...)
	return err
}

// TagExists reports whether a tag with the name exists.
func (g *CLI) TagExists(name string) bool {
	_, err := g.run("rev-parse", "--verify", "refs/tags/"+name)
	return err == nil
}

// Push pushes the branch to origin, setting the upstream ref.
func (g *CLI) Push(branch string) error {
	_, err := g.run("push", "--set-upstream", "origin", branch)
	return err
}

// run executes a git command with the given arguments against Dir.
//
// It captures stdout and stderr separately. On success it returns
// stdout; on failure it returns the combined output so callers can
// inspect git's diagnostics (conflict detection relies on this), plus
// an error naming the failed subcommand with the stderr text attached.
func (g *CLI) run(args ...string) (string, error) {
	fullArgs := append([]string{"-C", g.Dir}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return stdout.String() + stderr.String(), fmt.Errorf("%s: %w", message, err)
	}

	return stdout.String(), nil
}
