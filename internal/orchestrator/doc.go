// Package orchestrator implements the build flow as an explicit state
// machine: validation, tag composition, repository bootstrap, snapshot,
// parent resolution, cross-track gating, branch preparation, parent
// merge, commit, external build invocation, tagging, optional push,
// stable promotion and the final ledger append.
//
// Each state has one transition method returning the next state or an
// error. Run drives the chain; any error raised after the snapshot is
// armed triggers rollback (unless suppressed) before it propagates.
// All collaborators — git, prompting, the build tool, the ledger — are
// injected behind interfaces so every transition is unit-testable
// without a real repository.
package orchestrator
