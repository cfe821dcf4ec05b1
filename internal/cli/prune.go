package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thekniru/kniru-wt/internal/model"
	"github.com/thekniru/kniru-wt/internal/worktree"
)

type pruneFlags struct {
	dryRun bool
}

// NewPruneCommand creates the "prune" cobra command.
func NewPruneCommand() *cobra.Command {
	flags := &pruneFlags{}

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove stale worktree entries",
		Long: `Remove the administrative data of worktrees whose directories were
deleted without "wt remove", and clean up empty directories they left behind
in the worktrees directory. Locked worktrees are kept.

Examples:
  wt prune --dry-run
  wt prune`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "Only report what would be pruned")

	return cmd
}

func runPrune(w io.Writer, flags *pruneFlags) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	stale, err := e.mgr.Prune(e.repo.MainRoot, flags.dryRun)
	if err != nil {
		return err
	}
	if !flags.dryRun {
		dir := e.worktreesDir()
		for _, wt := range stale {
			worktree.RemoveEmptyParents(wt.Path, dir)
		}
	}
	VerboseLog("%d stale worktree(s)", len(stale))

	if IsJSONOutput() {
		if stale == nil {
			stale = []model.Worktree{}
		}
		return printJSON(w, map[string]interface{}{
			"dryRun": flags.dryRun,
			"pruned": stale,
		})
	}

	if len(stale) == 0 {
		fmt.Fprintln(w, "Nothing to prune.")
		return nil
	}
	verb := "Pruned"
	if flags.dryRun {
		verb = "Would prune"
	}
	fmt.Fprintf(w, "%s %d stale worktree(s):\n", verb, len(stale))
	for _, wt := range stale {
		fmt.Fprintf(w, "  %s  %s\n", wt.DisplayName(), wt.Path)
	}
	return nil
}
