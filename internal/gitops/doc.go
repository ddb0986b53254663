// Package gitops provides the git operations used by the build
// orchestrator, behind a small interface so the state machine can be
// tested without a real repository.
//
// Design decisions:
//   - We shell out to `git` rather than using a Go Git library because
//     the flow leans on exact CLI semantics (fast-forward preference,
//     merge aborts, annotated tags) and must behave identically to a
//     developer running the same commands by hand.
//   - Every command runs with `git -C <dir>` so the process working
//     directory is never changed.
//   - Mutating operations have a dry-run decorator (DryRun) that prints
//     the intended command instead of running it.
package gitops
