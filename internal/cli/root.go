// Package cli implements the cobra-based CLI commands for wt.
//
// The root command doubles as the switch command: "wt <branch>" prints the
// path of the branch's worktree, creating it first when needed. Every other
// subcommand (list, path, root, open, remove, prune, config, utils) lives in
// its own file within this package.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thekniru/kniru-wt/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose lowers the log level to debug. Logs always go to stderr.
	verbose bool

	// configPath overrides the location of ~/.wtrc.
	configPath string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
func NewRootCommand() *cobra.Command {
	flags := &switchFlags{}

	rootCmd := &cobra.Command{
		Use:   "wt [branch]",
		Short: "Manage Git worktrees next to your repository",
		Long: `wt creates, switches between and removes Git worktrees.

Worktrees live in a sibling directory of the main repository:

  <parent>/<repo>           main worktree
  <parent>/<repo>-worktrees/<branch>

"wt <branch>" prints the worktree path for <branch> on stdout, creating the
worktree first when it does not exist yet. Combine it with the wt-utils shell
functions (see "wt utils") to change directory in one step.

Examples:
  wt feature/login -n          create branch feature/login and its worktree
  wt feature/login             print the worktree path (or check it out)
  wt hotfix -n -b release/1.2  branch off release/1.2
  cd "$(wt main)"`,

		// Setting Args keeps cobra from rejecting unknown words as
		// subcommands, so "wt <branch>" reaches RunE.
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeBranches,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr())
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if flags.isSet(cmd) {
					return model.NewCLIError(model.ExitGeneralError, "a branch name is required")
				}
				return runPick(cmd)
			}
			return runSwitch(cmd, args[0], flags)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the user config file (default $WTRC or ~/.wtrc)")

	rootCmd.Flags().BoolVarP(&flags.newBranch, "new", "n", false, "Create a new branch")
	rootCmd.Flags().StringVarP(&flags.base, "base", "b", "", "Start point for the new branch (implies --new)")
	rootCmd.Flags().BoolVarP(&flags.editor, "editor", "e", false, "Open the worktree in the editor")
	rootCmd.Flags().BoolVar(&flags.noCopy, "no-copy", false, "Do not copy configured files into the new worktree")
	rootCmd.Flags().BoolVar(&flags.noHooks, "no-hooks", false, "Do not run post-create commands")
	rootCmd.Flags().StringVar(&flags.path, "path", "", "Create the worktree at this path instead of the worktrees directory")

	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewPathCommand())
	rootCmd.AddCommand(NewRootDirCommand())
	rootCmd.AddCommand(NewOpenCommand())
	rootCmd.AddCommand(NewRemoveCommand())
	rootCmd.AddCommand(NewPruneCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewUtilsCommand())
	rootCmd.AddCommand(NewDocsCommand())

	return rootCmd
}

// setupLogging routes logrus to w. Progress and diagnostics never touch
// stdout, which carries only command results.
func setupLogging(w io.Writer) {
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIError types carry their own exit codes; other errors default to
// exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		code := model.ExitCodeOf(err)
		printError(os.Stderr, err, code)
		os.Exit(int(code))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(w io.Writer, err error, code model.ExitCode) {
	message := err.Error()
	var detail string
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		message = cliErr.Message
		if cliErr.Err != nil {
			detail = cliErr.Err.Error()
		}
	}

	if jsonOutput {
		errObj := map[string]interface{}{
			"message": message,
			"code":    int(code),
		}
		if detail != "" {
			errObj["detail"] = detail
		}
		// stderr even in JSON mode: stdout is reserved for successful
		// command output.
		data, _ := json.MarshalIndent(map[string]interface{}{"error": errObj}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if detail != "" {
		fmt.Fprintf(w, "Error: %s: %s\n", message, detail)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	logrus.Debugf(format, args...)
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to encode JSON output", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
