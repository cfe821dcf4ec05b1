package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thekniru/kniru-wt/internal/config"
	"github.com/thekniru/kniru-wt/internal/model"
)

// NewConfigCommand creates the "config" cobra command and its subcommands.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the settings read from ~/.wtrc (or $WTRC, or --config).

The file holds shell-style assignments:

  DEFAULT_BASE_BRANCH="develop"
  EDITOR_COMMAND="code"

Run "wt config init" to create a commented sample.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigPathCommand())
	cmd.AddCommand(newConfigDumpCommand())

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample ~/.wtrc",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := userConfigPath()
			if err != nil {
				return err
			}
			if err := config.Init(path, force); err != nil {
				return err
			}
			if IsJSONOutput() {
				return printJSON(cmd.OutOrStdout(), map[string]string{"path": path, "action": "created"})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the location of the user config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := userConfigPath()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}

func newConfigDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the effective settings in ~/.wtrc format",
		Long: `Print every setting, defaults included, as KEY="value" lines that can be
saved as a new ~/.wtrc.

Example:
  wt config dump > ~/.wtrc.new`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := config.LoadUser(configPath)
			if err != nil {
				return err
			}
			out, err := user.Marshal()
			if err != nil {
				return model.WrapCLIError(model.ExitConfigError, "failed to render settings", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}

// userConfigPath honours --config before $WTRC and ~/.wtrc.
func userConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	path, err := config.DefaultPath()
	if err != nil {
		return "", model.WrapCLIError(model.ExitConfigError, "failed to locate ~/.wtrc", err)
	}
	return path, nil
}

// runConfigShow prints the user settings. Outside a repository only
// ~/.wtrc is shown; inside one the project file is reported too.
func runConfigShow(w io.Writer) error {
	user, err := config.LoadUser(configPath)
	if err != nil {
		return err
	}

	var project *config.Project
	if e, err := loadEnv(); err == nil {
		project = e.project
	} else if model.ExitCodeOf(err) == model.ExitConfigError {
		return err
	}

	if IsJSONOutput() {
		out := map[string]interface{}{
			"path":     user.Path,
			"loaded":   user.Loaded,
			"settings": user.Values(),
		}
		if project != nil && project.Path != "" {
			out["project"] = project
			out["projectPath"] = project.Path
		}
		return printJSON(w, out)
	}

	state := "not found, using defaults"
	if user.Loaded {
		state = "loaded"
	}
	fmt.Fprintf(w, "# %s (%s)\n", user.Path, state)
	values := user.Values()
	for _, key := range user.SortedKeys() {
		fmt.Fprintf(w, "%s=%q\n", key, values[key])
	}
	if project != nil && project.Path != "" {
		fmt.Fprintf(w, "\n# project: %s\n", project.Path)
		if project.BaseBranch != "" {
			fmt.Fprintf(w, "baseBranch: %s\n", project.BaseBranch)
		}
		for _, c := range project.Copy {
			fmt.Fprintf(w, "copy: %s\n", c)
		}
		for _, c := range project.PostCreate {
			fmt.Fprintf(w, "postCreate: %s\n", c)
		}
	}
	return nil
}
