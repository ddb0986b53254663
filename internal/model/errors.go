package model

import (
	"errors"
	"fmt"
)

// ExitCode defines the process exit codes of the CLI. The contract is
// deliberately narrow: success (including user-declined-but-non-fatal
// paths) exits 0, every fatal condition exits 1. Scripts must not have
// to distinguish failure kinds by exit code — the printed message names
// the condition.
type ExitCode int

const (
	// ExitSuccess indicates the command completed, possibly with
	// declined optional steps.
	ExitSuccess ExitCode = 0

	// ExitFailure indicates a validation failure, merge conflict,
	// external build failure, or user abort after the snapshot was armed.
	ExitFailure ExitCode = 1
)

// Sentinel errors the orchestrator branches on with errors.Is.
var (
	// ErrDeclined marks an explicit user decline at a mandatory
	// confirmation gate. After the snapshot is armed it triggers
	// rollback before the process exits non-zero.
	ErrDeclined = errors.New("declined by user")

	// ErrMergeConflict marks a merge that produced conflicts. The flow
	// never attempts automated conflict resolution; the merge is
	// aborted and the snapshot restored.
	ErrMergeConflict = errors.New("merge conflict")

	// ErrNothingToCommit marks a commit attempt with a clean working
	// tree. It is a warning, never a failure.
	ErrNothingToCommit = errors.New("nothing to commit")
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
