// Package gitinfo reads worktree state without spawning git.
//
// It opens repositories with github.com/go-git/go-git/v5, which understands
// the .git file of linked worktrees when EnableDotGitCommonDir is set. The
// information is read-only and used to decorate `wt list --status`; all
// mutating operations stay in the worktree package.
package gitinfo
