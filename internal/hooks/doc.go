// Package hooks runs post-create commands in a freshly created worktree.
//
// Commands come from POST_CREATE_COMMAND in ~/.wtrc and the postCreate list
// of the project file. Before execution the following placeholders are
// substituted:
//
//   - {path}: absolute worktree path
//   - {branch}: branch name
//   - {repo}: repository name
//   - {base}: base the branch was created from (empty for existing branches)
//   - {main}: main worktree path
//
// The same values are exported as WT_PATH, WT_BRANCH, WT_REPO, WT_BASE and
// WT_MAIN. Commands run through `sh -c` with the worktree as working
// directory and their output on stderr, so stdout keeps carrying only the
// worktree path.
//
// Hook failures are logged but never fail the wt command: the worktree
// already exists at that point and is usable.
package hooks
