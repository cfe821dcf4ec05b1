package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPathCommand creates the "path" cobra command. Unlike "wt <branch>" it
// never creates anything.
func NewPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path <branch>",
		Short: "Print the path of an existing worktree",
		Long: `Print the path of the worktree that has <branch> checked out.

Exits with code 6 when no worktree exists for the branch.

Examples:
  wt path feature/login
  cd "$(wt path main)"`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeWorktrees,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			wt, err := e.find(args[0])
			if err != nil {
				return err
			}
			return printSwitchResult(cmd.OutOrStdout(), &switchResult{Branch: wt.ShortBranch(), Path: wt.Path})
		},
	}
}

// NewRootDirCommand creates the "root" cobra command, which prints the
// main worktree of the current repository.
func NewRootDirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "root",
		Short: "Print the main worktree path",
		Long: `Print the path of the main worktree, even when run inside a linked
worktree. With --json, the worktrees directory is reported as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			if IsJSONOutput() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"name":         e.repo.Name,
					"root":         e.repo.MainRoot,
					"toplevel":     e.repo.Toplevel,
					"worktreesDir": e.worktreesDir(),
					"linked":       e.mgr.IsWorktree(e.repo.Toplevel),
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), e.repo.MainRoot)
			return err
		},
	}
}

// completeWorktrees completes branch names that have a worktree.
func completeWorktrees(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	e, err := loadEnv()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	worktrees, err := e.mgr.List(e.repo.MainRoot)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, wt := range worktrees {
		if name := wt.ShortBranch(); name != "" {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeBranches completes local branch names for "wt <branch>".
func completeBranches(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	e, err := loadEnv()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	branches, err := e.mgr.LocalBranches(e.repo.MainRoot)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return branches, cobra.ShellCompDirectiveNoFileComp
}
