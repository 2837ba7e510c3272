// Package errors provides the tagged error values used throughout laddr.
// Every fallible operation returns a *StackError carrying a Kind; use
// errors.Is() with the exported sentinels or KindOf() to branch on outcomes.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a class of expected failure.
type Kind string

const (
	KindNotInRepo          Kind = "NOT_IN_REPO"
	KindBranchNotFound     Kind = "BRANCH_NOT_FOUND"
	KindStackNotFound      Kind = "STACK_NOT_FOUND"
	KindStackExists        Kind = "STACK_EXISTS"
	KindAlreadyInStack     Kind = "ALREADY_IN_STACK"
	KindNotInStack         Kind = "NOT_IN_STACK"
	KindSyncConflict       Kind = "SYNC_CONFLICT"
	KindUncommittedChanges Kind = "UNCOMMITTED_CHANGES"
	KindInvalidTrunk       Kind = "INVALID_TRUNK"
	KindConfigError        Kind = "CONFIG_ERROR"
	KindGitError           Kind = "GIT_ERROR"
)

// Sentinel errors for errors.Is() checks.
var (
	ErrNotInRepo          = errors.New("not in a git repository")
	ErrBranchNotFound     = errors.New("branch not found")
	ErrStackNotFound      = errors.New("stack not found")
	ErrStackExists        = errors.New("stack already exists")
	ErrAlreadyInStack     = errors.New("branch already in a stack")
	ErrNotInStack         = errors.New("branch not in a stack")
	ErrSyncConflict       = errors.New("sync conflict")
	ErrUncommittedChanges = errors.New("uncommitted changes")
	ErrInvalidTrunk       = errors.New("invalid trunk")
	ErrConfigError        = errors.New("config error")
	ErrGitError           = errors.New("git error")
)

var sentinels = map[Kind]error{
	KindNotInRepo:          ErrNotInRepo,
	KindBranchNotFound:     ErrBranchNotFound,
	KindStackNotFound:      ErrStackNotFound,
	KindStackExists:        ErrStackExists,
	KindAlreadyInStack:     ErrAlreadyInStack,
	KindNotInStack:         ErrNotInStack,
	KindSyncConflict:       ErrSyncConflict,
	KindUncommittedChanges: ErrUncommittedChanges,
	KindInvalidTrunk:       ErrInvalidTrunk,
	KindConfigError:        ErrConfigError,
	KindGitError:           ErrGitError,
}

// StackError is the tagged error value returned by the core. It carries a
// machine-readable Kind, a human message, optional structured details
// (conflicting files for SYNC_CONFLICT), and an optional remediation hint.
type StackError struct {
	Kind       Kind
	Message    string
	Conflicts  []string // files in conflict, SYNC_CONFLICT only
	Hint       string
	Underlying error
}

func (e *StackError) Error() string {
	msg := e.Message
	if len(e.Conflicts) > 0 {
		msg += "\nconflicting files:\n  " + strings.Join(e.Conflicts, "\n  ")
	}
	if e.Underlying != nil {
		msg += fmt.Sprintf(": %v", e.Underlying)
	}
	return msg
}

func (e *StackError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is the sentinel for this error's Kind, so
// errors.Is(err, ErrSyncConflict) works across wrapping.
func (e *StackError) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// New creates a StackError with the given kind and formatted message.
func New(kind Kind, format string, args ...interface{}) *StackError {
	return &StackError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a StackError that wraps an underlying error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *StackError {
	return &StackError{Kind: kind, Message: fmt.Sprintf(format, args...), Underlying: err}
}

// WithHint attaches a remediation hint and returns the same error.
func (e *StackError) WithHint(hint string) *StackError {
	e.Hint = hint
	return e
}

// WithConflicts attaches the conflicting file list and returns the same error.
func (e *StackError) WithConflicts(files []string) *StackError {
	e.Conflicts = files
	return e
}

// KindOf extracts the Kind from an error, unwrapping as needed. Returns ""
// for nil and for errors that did not originate in this package.
func KindOf(err error) Kind {
	var se *StackError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// NewGitCommandError creates a GIT_ERROR for a failed git invocation,
// preserving stdout/stderr for diagnostics.
func NewGitCommandError(args []string, stdout, stderr string, err error) *StackError {
	msg := fmt.Sprintf("git command failed: git %s", strings.Join(args, " "))
	if stderr != "" {
		msg += "\nstderr: " + strings.TrimSpace(stderr)
	}
	if stdout != "" {
		msg += "\nstdout: " + strings.TrimSpace(stdout)
	}
	return &StackError{Kind: KindGitError, Message: msg, Underlying: err}
}
