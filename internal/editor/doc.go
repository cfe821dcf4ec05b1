// Package editor opens a worktree in the user's editor (EDITOR_COMMAND,
// $VISUAL or $EDITOR).
//
// The command string is split with github.com/mattn/go-shellwords so that
// quoted arguments such as `"/Applications/My Editor.app/bin/edit" -n` work
// without involving a shell.
package editor
