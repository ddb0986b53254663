// Package snapshot implements the pre-build safety snapshot: a single
// (branch, commit) pair captured before the flow starts mutating the
// repository, and the forced restore that rollback performs.
//
// The manager holds at most one live snapshot. It exists only for the
// duration of one build attempt and is never persisted — a process that
// dies between snapshot and rollback leaves the repository wherever the
// last completed git operation put it.
package snapshot

import (
	"fmt"

	"github.com/embedk/fwbuild/internal/gitops"
	"github.com/embedk/fwbuild/internal/ui"
)

// Manager is a two-state machine: clean (no snapshot held) and armed
// (holding one branch+commit pair). Snapshot arms it, Rollback consumes
// the pair and returns it to clean.
type Manager struct {
	git gitops.Git
	out *ui.Output

	armed  bool
	branch string
	commit string
}

// New creates a Manager in the clean state.
func New(git gitops.Git, out *ui.Output) *Manager {
	return &Manager{git: git, out: out}
}

// Armed reports whether a snapshot is currently held.
func (m *Manager) Armed() bool {
	return m.armed
}

// Branch returns the recorded branch name, or "" when clean.
func (m *Manager) Branch() string {
	if !m.armed {
		return ""
	}
	return m.branch
}

// Snapshot captures the current (branch, commit) position. Taking a
// snapshot while one is already armed silently replaces it — snapshots
// never stack, there is exactly one rollback point.
func (m *Manager) Snapshot() error {
	branch, err := m.git.CurrentBranch()
	if err != nil {
		return fmt.Errorf("capturing snapshot branch: %w", err)
	}
	commit, err := m.git.Head()
	if err != nil {
		return fmt.Errorf("capturing snapshot commit: %w", err)
	}

	m.branch = branch
	m.commit = commit
	m.armed = true
	m.out.Verbosef("snapshot armed at %s (%s)", branch, shortHash(commit))
	return nil
}

// Rollback forcibly restores the repository to the recorded position:
// the recorded branch is checked out (discarding work-tree changes) and
// reset hard to the recorded commit. The snapshot is consumed.
//
// Calling Rollback with no snapshot armed is a safe no-op that emits a
// warning — the orchestrator rolls back defensively on abort paths even
// when nothing was at risk yet.
func (m *Manager) Rollback() error {
	if !m.armed {
		m.out.Warnf("rollback requested but no snapshot is armed; nothing to restore")
		return nil
	}

	m.out.Infof("rolling back to %s (%s)", m.branch, shortHash(m.commit))

	if err := m.git.CheckoutForce(m.branch); err != nil {
		return fmt.Errorf("rollback checkout of %s: %w", m.branch, err)
	}
	if err := m.git.ResetHard(m.commit); err != nil {
		return fmt.Errorf("rollback reset to %s: %w", m.commit, err)
	}

	m.armed = false
	m.branch = ""
	m.commit = ""
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
