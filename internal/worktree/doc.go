// Package worktree provides Git worktree management operations for the wt CLI.
//
// All Git operations are performed via os/exec calls to the git binary.
// This approach:
//   - Uses the exact same Git behavior the user sees in their terminal
//   - Supports every worktree subcommand (go-git cannot add or remove
//     linked worktrees)
//   - Requires Git >= 2.17 (for `git worktree remove`)
//
// Besides the Manager, the package owns the on-disk layout convention
// (linked worktrees live in <parent>/<repo>-worktrees/<branch>), base branch
// resolution and copying of untracked files into fresh worktrees.
package worktree
