// Package cli; remove.go implements the "wt remove" command.
//
// The remove command deletes a linked worktree:
//  1. git worktree remove (with --force when -f is given)
//  2. empty parent directories up to the worktrees directory
//  3. optionally the branch itself (-D)
//
// By default, the command prompts for confirmation before proceeding.
// The --yes flag skips the prompt; without a terminal it is required.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thekniru/kniru-wt/internal/model"
	"github.com/thekniru/kniru-wt/internal/worktree"
)

// removeFlags holds the flag values for the remove command.
type removeFlags struct {
	// force removes worktrees with uncommitted changes and deletes
	// unmerged branches.
	force bool

	// deleteBranch also deletes the branch after removing its worktree.
	deleteBranch bool

	// yes skips the interactive confirmation prompt.
	yes bool
}

// NewRemoveCommand creates the "remove" cobra command.
func NewRemoveCommand() *cobra.Command {
	flags := &removeFlags{}

	cmd := &cobra.Command{
		Use:     "remove <branch|path>",
		Aliases: []string{"rm"},
		Short:   "Remove a worktree",
		Long: `Remove the worktree of <branch> (or the worktree at <path>).

Git refuses to remove worktrees with uncommitted changes unless --force is
given. With --delete-branch the branch is deleted too; combined with --force
this also deletes unmerged branches.

Unless --yes is specified, the command prompts for confirmation.

Examples:
  wt remove feature/login
  wt rm feature/login -D -y
  wt remove ../app-worktrees/spike --force`,

		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeWorktrees,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd.OutOrStdout(), args[0], flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Remove even with uncommitted changes")
	cmd.Flags().BoolVarP(&flags.deleteBranch, "delete-branch", "D", false, "Also delete the branch")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// removeResult is the JSON shape of a successful removal.
type removeResult struct {
	Branch        string `json:"branch,omitempty"`
	Path          string `json:"path"`
	Action        string `json:"action"`
	BranchDeleted bool   `json:"branchDeleted"`
}

// runRemove finds the worktree, confirms, removes it and cleans up.
func runRemove(w io.Writer, target string, flags *removeFlags) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	wt, err := e.find(target)
	if err != nil {
		return err
	}
	if wt.IsMain || wt.IsBare {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("%s is the main worktree and cannot be removed", wt.Path))
	}
	branch := wt.ShortBranch()
	VerboseLog("removing worktree %s (%s)", wt.Path, wt.DisplayName())

	if !flags.yes {
		if !isInteractive() {
			return model.NewCLIError(model.ExitUserCancelled,
				"refusing to remove without confirmation (use --yes)")
		}
		label := fmt.Sprintf("Remove worktree %s", displayPath(wt.Path))
		if flags.deleteBranch && branch != "" {
			label += fmt.Sprintf(" and delete branch %s", branch)
		}
		ok, err := confirm(label)
		if err != nil {
			return err
		}
		if !ok {
			return model.NewCLIError(model.ExitUserCancelled, "operation cancelled by user")
		}
	}

	repoPath := e.repo.MainRoot
	if err := e.mgr.Remove(repoPath, wt.Path, flags.force); err != nil {
		if _, statErr := os.Stat(wt.Path); statErr == nil {
			return model.WrapCLIError(model.ExitGitError,
				fmt.Sprintf("failed to remove worktree at %s", wt.Path), err)
		}
		// Directory already gone; drop the stale administrative entry.
		VerboseLog("worktree directory is missing, pruning instead")
		if _, err := e.mgr.Prune(repoPath, false); err != nil {
			return err
		}
	}
	worktree.RemoveEmptyParents(wt.Path, e.worktreesDir())

	result := &removeResult{Branch: branch, Path: wt.Path, Action: "removed"}
	if flags.deleteBranch && branch != "" {
		if err := e.mgr.DeleteBranch(repoPath, branch, flags.force); err != nil {
			return model.WrapCLIError(model.ExitGitError,
				fmt.Sprintf("worktree removed but branch %s was not deleted (use --force for unmerged branches)", branch), err)
		}
		result.BranchDeleted = true
	}

	if worktree.Within(e.cwd, wt.Path) {
		logrus.Warnf("your current directory was inside %s", wt.Path)
	}

	return printRemoveResult(w, result)
}

// printRemoveResult outputs the remove command result in text or JSON format.
func printRemoveResult(w io.Writer, result *removeResult) error {
	if IsJSONOutput() {
		return printJSON(w, result)
	}
	name := result.Branch
	if name == "" {
		name = "(detached)"
	}
	fmt.Fprintf(w, "Removed worktree %s at %s\n", name, result.Path)
	if result.BranchDeleted {
		fmt.Fprintf(w, "  Deleted branch %s\n", result.Branch)
	}
	return nil
}
