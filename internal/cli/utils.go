package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thekniru/kniru-wt/internal/model"
	"github.com/thekniru/kniru-wt/internal/shell"
)

const utilsLong = `Print the wt-utils script. Sourcing it in bash or zsh defines:

  wtcd <branch> [flags]  cd into the worktree of <branch>, creating it if needed
  wtn <branch> [flags]   create a new branch and cd into its worktree
  wtrm [branch]          remove a worktree (default: the current one) and cd to the main worktree
  wthome                 cd to the main worktree
  wtls                   list worktrees
  wto <branch>           open a worktree in the editor

Examples:
  source <(wt utils)
  wt utils install --dir ~/.local/bin && echo 'source ~/.local/bin/wt-utils' >> ~/.bashrc`

// NewUtilsCommand creates the "utils" cobra command, which prints the
// wt-utils shell integration script.
func NewUtilsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "utils",
		Short: "Print the wt-utils shell functions",
		Long:  utilsLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), shell.Script)
			return err
		},
	}

	cmd.AddCommand(newUtilsInstallCommand())
	return cmd
}

func newUtilsInstallCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Write wt-utils next to the wt binary (or into --dir)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				exe, err := os.Executable()
				if err != nil {
					return model.WrapCLIError(model.ExitGeneralError, "cannot locate the wt binary (use --dir)", err)
				}
				if resolved, err := filepath.EvalSymlinks(exe); err == nil {
					exe = resolved
				}
				dir = filepath.Dir(exe)
			}

			path, err := shell.Install(dir)
			if err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "failed to install wt-utils", err)
			}

			if IsJSONOutput() {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"path":   path,
					"source": shell.SourceLine(path),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			fmt.Fprintf(cmd.ErrOrStderr(), "Add this line to your ~/.bashrc or ~/.zshrc:\n  %s\n", shell.SourceLine(path))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Target directory (default: the directory of the wt binary)")
	return cmd
}
