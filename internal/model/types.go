package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// branchRefPrefix is the ref namespace git uses for local branches in
// porcelain output ("branch refs/heads/main").
const branchRefPrefix = "refs/heads/"

// Worktree holds metadata about a single Git worktree entry as parsed from
// `git worktree list --porcelain` output.
//
// Example porcelain block:
//
//	worktree /path/to/app-worktrees/feature-x
//	HEAD abc123def456
//	branch refs/heads/feature-x
type Worktree struct {
	// Path is the absolute filesystem path to the worktree directory.
	Path string `json:"path"`

	// Branch is the full branch reference (e.g., "refs/heads/main").
	// Empty if the worktree is in a detached HEAD state.
	Branch string `json:"branch,omitempty"`

	// HEAD is the commit SHA that the worktree currently points to.
	HEAD string `json:"head,omitempty"`

	// IsBare marks the entry of a bare repository.
	IsBare bool `json:"bare,omitempty"`

	// IsMain is true for the first porcelain entry, which git always
	// reports as the main working tree.
	IsMain bool `json:"main"`

	// Detached is true when the worktree has no branch checked out.
	Detached bool `json:"detached,omitempty"`

	// Locked is true when `git worktree lock` was used on the entry.
	Locked bool `json:"locked,omitempty"`

	// Prunable is true when git considers the administrative data stale,
	// usually because the directory was deleted by hand.
	Prunable bool `json:"prunable,omitempty"`
}

// ShortBranch returns the branch name without the refs/heads/ prefix.
func (w Worktree) ShortBranch() string {
	return strings.TrimPrefix(w.Branch, branchRefPrefix)
}

// DisplayName returns the branch name, or "(detached)" / "(bare)" markers
// for entries that have no branch.
func (w Worktree) DisplayName() string {
	switch {
	case w.IsBare:
		return "(bare)"
	case w.Branch == "":
		return "(detached)"
	default:
		return w.ShortBranch()
	}
}

// Matches reports whether target refers to this worktree. A target matches
// the short branch name, the full ref or the absolute path. Relative paths
// and directory base names never match.
func (w Worktree) Matches(target string) bool {
	if target == "" {
		return false
	}
	if w.Branch != "" && (target == w.ShortBranch() || target == w.Branch) {
		return true
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target) == filepath.Clean(w.Path)
	}
	return false
}

// BranchRef converts a short branch name into a full refs/heads/ reference.
func BranchRef(branch string) string {
	if strings.HasPrefix(branch, branchRefPrefix) {
		return branch
	}
	return branchRefPrefix + branch
}

// ExitCode defines the wt process exit codes. Shell helpers in wt-utils and
// scripts rely on them to tell a missing branch apart from a git failure.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitNotGitRepo indicates wt was run outside a Git repository.
	ExitNotGitRepo ExitCode = 2

	// ExitGitError indicates a git command failed.
	ExitGitError ExitCode = 3

	// ExitBranchNotFound indicates the requested branch (or base branch)
	// does not exist locally or on the remote.
	ExitBranchNotFound ExitCode = 4

	// ExitAlreadyExists indicates a branch or worktree path already exists
	// when creating a new one.
	ExitAlreadyExists ExitCode = 5

	// ExitWorktreeNotFound indicates no worktree matches the target.
	ExitWorktreeNotFound ExitCode = 6

	// ExitUserCancelled indicates the user cancelled an interactive prompt.
	ExitUserCancelled ExitCode = 7

	// ExitConfigError indicates ~/.wtrc or the project file is invalid.
	ExitConfigError ExitCode = 8
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

// ExitCodeOf returns the exit code carried by the outermost CLIError in
// err's chain, ExitSuccess for nil and ExitGeneralError otherwise.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return ExitGeneralError
}
