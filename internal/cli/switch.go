package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thekniru/kniru-wt/internal/editor"
	"github.com/thekniru/kniru-wt/internal/hooks"
	"github.com/thekniru/kniru-wt/internal/model"
	"github.com/thekniru/kniru-wt/internal/worktree"
)

// switchFlags holds the flag values of the root command.
type switchFlags struct {
	newBranch bool
	base      string
	editor    bool
	noCopy    bool
	noHooks   bool
	path      string
}

// isSet reports whether any switch flag was given on the command line.
func (f *switchFlags) isSet(cmd *cobra.Command) bool {
	for _, name := range []string{"new", "base", "editor", "no-copy", "no-hooks", "path"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// switchResult describes what "wt <branch>" did.
type switchResult struct {
	Branch  string         `json:"branch"`
	Path    string         `json:"path"`
	Created bool           `json:"created"`
	Source  string         `json:"source,omitempty"`
	Base    string         `json:"base,omitempty"`
	Copied  []string       `json:"copied,omitempty"`
	Hooks   []hookResultJS `json:"hooks,omitempty"`
}

type hookResultJS struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// runSwitch resolves branch to a worktree path, creating the worktree
// when it does not exist.
//
// The flow is:
//  1. An existing worktree for branch is reused as is.
//  2. With -n (or -b) a new branch is created from the resolved base.
//  3. Otherwise an existing local branch is checked out, then a branch
//     that only exists on the remote is checked out with tracking.
//  4. New worktrees get copied files, post-create hooks and, optionally,
//     the editor.
func runSwitch(cmd *cobra.Command, branch string, flags *switchFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	create := flags.newBranch || flags.base != ""
	repoPath := e.repo.MainRoot

	if err := e.mgr.ValidateBranchName(repoPath, branch); err != nil {
		return err
	}

	worktrees, err := e.mgr.List(repoPath)
	if err != nil {
		return err
	}
	for _, wt := range worktrees {
		if wt.ShortBranch() != branch {
			continue
		}
		if create {
			return model.NewCLIError(model.ExitAlreadyExists,
				fmt.Sprintf("branch %q already exists and is checked out at %s", branch, wt.Path))
		}
		VerboseLog("branch %s already has a worktree", branch)
		result := &switchResult{Branch: branch, Path: wt.Path}
		if flags.editor {
			openEditor(ctx, e, wt.Path)
		}
		return printSwitchResult(cmd.OutOrStdout(), result)
	}

	target := flags.path
	if target == "" {
		target = worktree.PathFor(e.worktreesDir(), branch)
	} else if target, err = filepath.Abs(target); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid --path", err)
	}

	result := &switchResult{Branch: branch, Path: target, Created: true}
	remote := e.settings.Remote

	if create {
		if e.mgr.BranchExists(repoPath, branch) {
			return model.NewCLIError(model.ExitAlreadyExists,
				fmt.Sprintf("branch %q already exists (drop -n to check it out)", branch))
		}
		if e.settings.FetchOnCreate {
			fetch(e, remote, "")
		}
		base, err := e.mgr.ResolveBase(repoPath, flags.base, e.settings.BaseBranch, remote)
		if err != nil {
			return err
		}
		VerboseLog("creating branch %s from %s at %s", branch, base, target)
		if err := e.mgr.AddNewBranch(repoPath, branch, target, base); err != nil {
			return err
		}
		result.Source = "new"
		result.Base = base
	} else {
		if !e.mgr.BranchExists(repoPath, branch) && e.settings.FetchOnCreate {
			fetch(e, remote, branch)
		}
		switch {
		case e.mgr.BranchExists(repoPath, branch):
			VerboseLog("checking out local branch %s at %s", branch, target)
			if err := e.mgr.AddExisting(repoPath, branch, target); err != nil {
				return err
			}
			result.Source = "local"
		case e.mgr.RemoteBranchExists(repoPath, remote, branch):
			VerboseLog("checking out %s/%s at %s", remote, branch, target)
			if err := e.mgr.AddTracking(repoPath, branch, target, remote); err != nil {
				return err
			}
			result.Source = "remote"
			result.Base = remote + "/" + branch
		default:
			return model.NewCLIError(model.ExitBranchNotFound,
				fmt.Sprintf("branch %q not found (use -n to create it)", branch))
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Created worktree for %s at %s\n", branch, target)

	if !flags.noCopy && len(e.settings.CopyPatterns) > 0 {
		copied, err := worktree.CopyFiles(e.repo.MainRoot, target, e.settings.CopyPatterns)
		if err != nil {
			logrus.WithError(err).Warn("copying files into the new worktree failed")
		}
		result.Copied = copied
		VerboseLog("copied %d file(s)", len(copied))
	}

	if !flags.noHooks && len(e.settings.PostCreate) > 0 {
		runner := hooks.NewRunner()
		runner.Output = cmd.ErrOrStderr()
		hc := hooks.Context{
			Path:   target,
			Branch: branch,
			Repo:   e.repo.Name,
			Base:   result.Base,
			Main:   e.repo.MainRoot,
		}
		for _, r := range runner.RunAll(ctx, hc, e.settings.PostCreate) {
			h := hookResultJS{Command: r.Command, OK: !r.Failed()}
			if r.Failed() {
				h.Error = r.Err.Error()
			}
			result.Hooks = append(result.Hooks, h)
		}
	}

	if flags.editor || e.settings.AutoOpenEditor {
		openEditor(ctx, e, target)
	}

	return printSwitchResult(cmd.OutOrStdout(), result)
}

// fetch updates the remote. Failures only warn; the local state may still
// be enough to continue.
func fetch(e *env, remote, ref string) {
	VerboseLog("fetching %s", remote)
	if err := e.mgr.Fetch(e.repo.MainRoot, remote, ref); err != nil {
		logrus.WithError(err).Warnf("fetch from %s failed", remote)
	}
}

// openEditor launches the configured editor on path. The worktree exists
// at this point, so a missing or failing editor is only a warning.
func openEditor(ctx context.Context, e *env, path string) {
	command := e.settings.ResolveEditor()
	if command == "" {
		logrus.Warn(editor.ErrNoEditor)
		return
	}
	if err := editor.NewOpener().Open(ctx, command, path); err != nil {
		logrus.WithError(err).Warn("failed to open editor")
	}
}

// printSwitchResult prints the worktree path, or the full result as JSON.
// Nothing else may be written to stdout: the shell helpers cd into it.
func printSwitchResult(w io.Writer, result *switchResult) error {
	if IsJSONOutput() {
		return printJSON(w, result)
	}
	_, err := fmt.Fprintln(w, result.Path)
	return err
}
