// Package model defines the domain types and value objects for the
// fwbuild CLI.
//
// This package contains pure data structures with no external
// dependencies: the build facets (track, version, environment,
// stability, change type, optional parent), the VersionTag composed
// from them, branch-name resolution, and version suggestion. The string
// forms of tags and branches are treated as serialization boundaries
// only — all internal logic operates on the structured types.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
