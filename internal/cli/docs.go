package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thekniru/kniru-wt/internal/model"
)

// NewDocsCommand creates the hidden "docs" command used at release time to
// render man pages and Markdown reference docs from the command tree.
func NewDocsCommand() *cobra.Command {
	var manDir, markdownDir string

	cmd := &cobra.Command{
		Use:    "docs",
		Short:  "Generate man pages and Markdown docs",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if manDir == "" && markdownDir == "" {
				return model.NewCLIError(model.ExitGeneralError, "nothing to do: pass --man and/or --markdown")
			}
			root := cmd.Root()
			root.DisableAutoGenTag = true

			if manDir != "" {
				if err := os.MkdirAll(manDir, 0o755); err != nil {
					return model.WrapCLIError(model.ExitGeneralError, "failed to create man directory", err)
				}
				header := &doc.GenManHeader{
					Title:   "WT",
					Section: "1",
					Source:  fmt.Sprintf("wt %s", Version),
					Manual:  "wt manual",
				}
				if err := doc.GenManTree(root, header, manDir); err != nil {
					return model.WrapCLIError(model.ExitGeneralError, "failed to generate man pages", err)
				}
				if err := writeUtilsManPage(header, manDir); err != nil {
					return model.WrapCLIError(model.ExitGeneralError, "failed to generate wt-utils man page", err)
				}
				VerboseLog("wrote man pages to %s", manDir)
			}

			if markdownDir != "" {
				if err := os.MkdirAll(markdownDir, 0o755); err != nil {
					return model.WrapCLIError(model.ExitGeneralError, "failed to create markdown directory", err)
				}
				if err := doc.GenMarkdownTree(root, markdownDir); err != nil {
					return model.WrapCLIError(model.ExitGeneralError, "failed to generate markdown docs", err)
				}
				VerboseLog("wrote markdown docs to %s", markdownDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manDir, "man", "", "Directory for man pages")
	cmd.Flags().StringVar(&markdownDir, "markdown", "", "Directory for Markdown docs")

	return cmd
}

// writeUtilsManPage renders wt-utils.1 for the sourced shell functions,
// which have no command of their own in the tree.
func writeUtilsManPage(header *doc.GenManHeader, manDir string) error {
	page := &cobra.Command{
		Use:               "wt-utils",
		Short:             "Shell functions for changing into wt worktrees",
		Long:              utilsLong,
		DisableAutoGenTag: true,
	}

	f, err := os.Create(filepath.Join(manDir, "wt-utils.1"))
	if err != nil {
		return err
	}
	defer f.Close()

	utilsHeader := *header
	return doc.GenMan(page, &utilsHeader, f)
}
