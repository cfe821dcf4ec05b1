package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thekniru/kniru-wt/internal/editor"
	"github.com/thekniru/kniru-wt/internal/model"
)

// NewOpenCommand creates the "open" cobra command.
func NewOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open [branch]",
		Short: "Open a worktree in the editor",
		Long: `Open the worktree of [branch] (default: the current worktree) with
EDITOR_COMMAND from ~/.wtrc, falling back to $VISUAL and $EDITOR.

Examples:
  wt open feature/login
  wt open`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeWorktrees,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runOpen(cmd.Context(), target)
		},
	}
}

func runOpen(ctx context.Context, target string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := loadEnv()
	if err != nil {
		return err
	}

	path := e.repo.Toplevel
	if target != "" {
		wt, err := e.find(target)
		if err != nil {
			return err
		}
		path = wt.Path
	}

	command := e.settings.ResolveEditor()
	if command == "" {
		return model.WrapCLIError(model.ExitConfigError, "cannot open editor", editor.ErrNoEditor)
	}
	VerboseLog("opening %s with %s", path, command)
	if err := editor.NewOpener().Open(ctx, command, path); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to open editor", err)
	}
	return nil
}
