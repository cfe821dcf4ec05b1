// Package cli; list.go implements the "wt list" command.
//
// The list command displays all worktrees of the repository, main worktree
// first, as a text table or JSON array depending on the --json flag. With
// --status every worktree is opened read-only to report its HEAD commit and
// whether it has uncommitted changes.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thekniru/kniru-wt/internal/gitinfo"
	"github.com/thekniru/kniru-wt/internal/model"
)

// listFlags holds the flag values for the list command.
type listFlags struct {
	// status adds HEAD subject and working tree state to every row.
	status bool
}

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List worktrees of the current repository",
		Long: `List all worktrees of the current repository.

The current worktree is marked with "*". Stale entries whose directories were
deleted by hand are marked "prunable"; remove them with "wt prune".

Examples:
  wt list
  wt ls --status
  wt list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.status, "status", "s", false, "Show HEAD commit and working tree state")

	return cmd
}

// listEntry is one row of the list output.
type listEntry struct {
	model.Worktree
	Current bool             `json:"current"`
	Status  *gitinfo.Summary `json:"status,omitempty"`
}

// runList loads the worktrees and prints them.
func runList(w io.Writer, flags *listFlags) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	worktrees, err := e.mgr.List(e.repo.MainRoot)
	if err != nil {
		return err
	}
	VerboseLog("found %d worktrees", len(worktrees))

	entries := make([]listEntry, 0, len(worktrees))
	for _, wt := range worktrees {
		entry := listEntry{Worktree: wt, Current: wt.Path == e.repo.Toplevel}
		if flags.status && !wt.IsBare && !wt.Prunable {
			summary, err := gitinfo.Inspect(wt.Path)
			if err != nil {
				// One unreadable worktree should not prevent listing others.
				logrus.WithError(err).Warnf("cannot inspect %s", wt.Path)
			} else {
				entry.Status = summary
			}
		}
		entries = append(entries, entry)
	}

	return printListResult(w, entries, flags.status)
}

// printListResult outputs the list of worktrees in text or JSON format,
// depending on the global --json flag.
func printListResult(w io.Writer, entries []listEntry, withStatus bool) error {
	if IsJSONOutput() {
		return printJSON(w, struct {
			Worktrees []listEntry `json:"worktrees"`
		}{Worktrees: entries})
	}
	printListResultText(w, entries, withStatus)
	return nil
}

// printListResultText renders entries as an aligned table:
//
//	  BRANCH         PATH                              HEAD
//	* main           ~/src/app                         1a2b3c4
//	  feature/login  ~/src/app-worktrees/feature/login 5d6e7f8
func printListResultText(w io.Writer, entries []listEntry, withStatus bool) {
	header := []string{"", "BRANCH", "PATH", "HEAD"}
	if withStatus {
		header = append(header, "STATE", "SUBJECT")
	}

	rows := [][]string{header}
	for _, entry := range entries {
		marker := " "
		if entry.Current {
			marker = "*"
		}
		head := shortHash(entry.HEAD)
		row := []string{marker, entry.DisplayName(), displayPath(entry.Path), head}
		if withStatus {
			state, subject := "-", ""
			if entry.Status != nil {
				state, subject = entry.Status.State(), entry.Status.Subject
			}
			row = append(row, state, subject)
		}
		row[len(row)-1] = strings.TrimSpace(row[len(row)-1] + " " + flagsOf(entry.Worktree))
		rows = append(rows, row)
	}

	writeTable(w, rows)
}

// flagsOf returns the annotations shown after a row.
func flagsOf(wt model.Worktree) string {
	var marks []string
	if wt.Locked {
		marks = append(marks, "(locked)")
	}
	if wt.Prunable {
		marks = append(marks, "(prunable)")
	}
	return strings.Join(marks, " ")
}

// writeTable prints rows with columns padded to their widest cell. Widths
// are measured in terminal cells, so CJK branch names stay aligned.
func writeTable(w io.Writer, rows [][]string) {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(padRight(cell, widths[i]))
			b.WriteString(" ")
			if i > 0 {
				b.WriteString(" ")
			}
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// shortHash abbreviates a commit SHA for display.
func shortHash(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	if sha == "" {
		return "-"
	}
	return sha
}

// displayPath shortens paths below the home directory to ~/...
func displayPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") {
		return "~" + string(filepath.Separator) + rel
	}
	return path
}
