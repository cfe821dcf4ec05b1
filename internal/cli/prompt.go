package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thekniru/kniru-wt/internal/model"
)

// isInteractive reports whether prompts can be shown. Tests replace it.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// bellFilterWriter drops the terminal bell readline emits on every key
// press that does not move the cursor.
type bellFilterWriter struct {
	w io.Writer
}

func (b *bellFilterWriter) Write(p []byte) (int, error) {
	if bytes.IndexByte(p, '\a') == -1 {
		if _, err := b.w.Write(p); err != nil {
			return 0, err
		}
		return len(p), nil
	}
	if _, err := b.w.Write(bytes.ReplaceAll(p, []byte{'\a'}, nil)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (b *bellFilterWriter) Close() error {
	return nil
}

// promptOutput renders prompts on stderr so that "$(wt)" captures only
// the selected path.
func promptOutput() io.WriteCloser {
	return &bellFilterWriter{w: os.Stderr}
}

// pickItem is the view model of one row in the worktree picker.
type pickItem struct {
	Label   string
	Path    string
	Current bool
}

// pickWorktree shows an interactive list and returns the chosen worktree.
func pickWorktree(worktrees []model.Worktree, current string) (*model.Worktree, error) {
	width := 0
	for _, wt := range worktrees {
		width = max(width, displayWidth(wt.DisplayName()))
	}

	items := make([]pickItem, 0, len(worktrees))
	cursor := 0
	for i, wt := range worktrees {
		isCurrent := wt.Path == current
		if isCurrent {
			cursor = i
		}
		items = append(items, pickItem{
			Label:   padRight(wt.DisplayName(), width),
			Path:    displayPath(wt.Path),
			Current: isCurrent,
		})
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   `{{ cyan "▸" }} {{ cyan .Label }}  {{ faint .Path }}{{ if .Current }} {{ green "*" }}{{ end }}`,
		Inactive: `  {{ .Label }}  {{ faint .Path }}{{ if .Current }} {{ green "*" }}{{ end }}`,
		Selected: `{{ cyan "✔" }} {{ .Label }}`,
	}

	sel := promptui.Select{
		Label:     "Switch to worktree",
		Items:     items,
		Templates: templates,
		Size:      min(len(items), 10),
		CursorPos: cursor,
		Stdout:    promptOutput(),
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index].Label), strings.ToLower(strings.TrimSpace(input)))
		},
	}

	index, _, err := sel.Run()
	if err != nil {
		return nil, promptError(err)
	}
	return &worktrees[index], nil
}

// confirm asks a yes/no question. Anything but an explicit yes is false.
func confirm(label string) (bool, error) {
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdout:    promptOutput(),
	}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, promptError(err)
	}
	return true, nil
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return model.NewCLIError(model.ExitUserCancelled, "cancelled")
	}
	return model.WrapCLIError(model.ExitGeneralError, "prompt failed", err)
}

// runPick implements bare "wt": a picker on a terminal, help otherwise.
func runPick(cmd *cobra.Command) error {
	if !isInteractive() {
		return cmd.Help()
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	worktrees, err := e.mgr.List(e.repo.MainRoot)
	if err != nil {
		return err
	}

	chosen, err := pickWorktree(worktrees, e.repo.Toplevel)
	if err != nil {
		return err
	}
	if IsJSONOutput() {
		return printJSON(cmd.OutOrStdout(), &switchResult{Branch: chosen.ShortBranch(), Path: chosen.Path})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), chosen.Path)
	return err
}
