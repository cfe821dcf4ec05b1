// Package model defines the domain types and value objects for the wt CLI.
//
// This package contains pure data structures with no external dependencies.
// Worktree entries are transient: they are rebuilt from
// `git worktree list --porcelain` on every invocation, and wt keeps no state
// files of its own.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
