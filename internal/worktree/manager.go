package worktree

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/thekniru/kniru-wt/internal/model"
)

// RepoInfo describes the repository wt was invoked in.
type RepoInfo struct {
	// Toplevel is the root of the working tree containing the start path.
	// Inside a linked worktree this is the linked worktree, not the main one.
	Toplevel string

	// MainRoot is the root of the main working tree. For bare repositories
	// it is the repository directory itself.
	MainRoot string

	// CommonDir is the absolute path of the shared .git directory.
	CommonDir string

	// Name is the repository name used in the worktrees directory name.
	Name string

	// CurrentBranch is the short branch checked out at Toplevel, or "" on
	// a detached HEAD.
	CurrentBranch string
}

// Manager provides Git worktree operations by invoking the git CLI.
//
// All methods receive the repository path as a parameter. GitBinary
// defaults to "git" on PATH.
type Manager struct {
	GitBinary string
}

// NewManager creates a new worktree Manager that uses git from PATH.
func NewManager() *Manager {
	return &Manager{GitBinary: "git"}
}

// Discover inspects the repository containing path.
//
// The git dirs are queried from the toplevel so that relative output is
// always relative to a known directory; git prints them relative to the
// current directory in the main worktree and absolute in linked ones.
//
// When the git dir equals the common dir, path is inside the main
// worktree and the toplevel is the main root. This also covers submodules
// and --separate-git-dir clones, whose git dir lives outside the checkout.
// From a linked worktree the main root is found via mainRootFrom.
func (m *Manager) Discover(path string) (*RepoInfo, error) {
	out, err := m.runGit(path, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, model.WrapCLIError(model.ExitNotGitRepo, "not inside a Git repository", err)
	}
	toplevel := strings.TrimSpace(out)

	out, err = m.runGit(toplevel, "rev-parse", "--git-dir", "--git-common-dir")
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		return nil, model.NewCLIError(model.ExitGitError, fmt.Sprintf("unexpected rev-parse output: %q", out))
	}
	gitDir := absFrom(toplevel, lines[0])
	commonDir := absFrom(toplevel, lines[1])

	mainRoot := toplevel
	if gitDir != commonDir {
		mainRoot = m.mainRootFrom(toplevel, commonDir)
	}

	return &RepoInfo{
		Toplevel:      toplevel,
		MainRoot:      mainRoot,
		CommonDir:     commonDir,
		Name:          strings.TrimSuffix(filepath.Base(mainRoot), ".git"),
		CurrentBranch: m.CurrentBranch(toplevel),
	}, nil
}

// mainRootFrom locates the main worktree from a linked one. In order:
//  1. core.worktree in the common config (submodules), relative to the
//     common dir.
//  2. the parent of a common dir named .git.
//  3. the first `git worktree list` entry, which is what git itself
//     reports as the main worktree.
func (m *Manager) mainRootFrom(toplevel, commonDir string) string {
	if out, err := m.runGit(toplevel, "config", "--file", filepath.Join(commonDir, "config"), "--get", "core.worktree"); err == nil {
		if wt := strings.TrimSpace(out); wt != "" {
			return absFrom(commonDir, wt)
		}
	}
	if filepath.Base(commonDir) == ".git" {
		return filepath.Dir(commonDir)
	}
	if worktrees, err := m.List(toplevel); err == nil && len(worktrees) > 0 {
		return filepath.Clean(worktrees[0].Path)
	}
	return commonDir
}

// absFrom resolves p against base unless it is already absolute.
func absFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	return filepath.Clean(p)
}

// AddNewBranch creates a worktree at worktreePath on a new branch that
// starts at base (HEAD when base is empty).
//
//	git worktree add -b <branch> <worktreePath> [<base>]
func (m *Manager) AddNewBranch(repoPath, branch, worktreePath, base string) error {
	if m.BranchExists(repoPath, branch) {
		return model.NewCLIError(model.ExitAlreadyExists, fmt.Sprintf("branch %q already exists", branch))
	}
	if err := prepareTarget(worktreePath); err != nil {
		return err
	}

	args := []string{"worktree", "add", "-b", branch, worktreePath}
	if base != "" {
		args = append(args, base)
	}
	_, err := m.runGit(repoPath, args...)
	return err
}

// AddExisting checks out an existing local branch into a new worktree.
//
//	git worktree add <worktreePath> <branch>
func (m *Manager) AddExisting(repoPath, branch, worktreePath string) error {
	if err := prepareTarget(worktreePath); err != nil {
		return err
	}
	_, err := m.runGit(repoPath, "worktree", "add", worktreePath, branch)
	return err
}

// AddTracking creates a local branch tracking remote/branch and checks it
// out into a new worktree.
//
//	git worktree add --track -b <branch> <worktreePath> <remote>/<branch>
func (m *Manager) AddTracking(repoPath, branch, worktreePath, remote string) error {
	if err := prepareTarget(worktreePath); err != nil {
		return err
	}
	_, err := m.runGit(repoPath, "worktree", "add", "--track", "-b", branch, worktreePath, remote+"/"+branch)
	return err
}

// prepareTarget refuses to reuse an existing path and creates the parent
// directories of worktreePath (e.g. <repo>-worktrees/feature/ for
// "feature/login").
func prepareTarget(worktreePath string) error {
	if _, err := os.Lstat(worktreePath); err == nil {
		return model.NewCLIError(model.ExitAlreadyExists, fmt.Sprintf("target path already exists: %s", worktreePath))
	} else if !errors.Is(err, os.ErrNotExist) {
		return model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("cannot access %s", worktreePath), err)
	}
	if err := os.MkdirAll(filepath.Dir(worktreePath), 0o755); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to create worktrees directory", err)
	}
	return nil
}

// List returns all worktrees of the repository, main worktree first.
func (m *Manager) List(repoPath string) ([]model.Worktree, error) {
	output, err := m.runGit(repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelainOutput(output), nil
}

// Find returns the worktree matching target (branch name, full ref or
// absolute path).
func (m *Manager) Find(repoPath, target string) (*model.Worktree, error) {
	worktrees, err := m.List(repoPath)
	if err != nil {
		return nil, err
	}
	if wt := findIn(worktrees, target); wt != nil {
		return wt, nil
	}
	return nil, model.NewCLIError(model.ExitWorktreeNotFound, fmt.Sprintf("no worktree for %q", target))
}

// findIn prefers branch matches over path matches so that a branch named
// like a directory is resolved by name.
func findIn(worktrees []model.Worktree, target string) *model.Worktree {
	if abs, err := filepath.Abs(target); err == nil && (strings.HasPrefix(target, ".") || filepath.IsAbs(target)) {
		for i := range worktrees {
			if worktrees[i].Matches(abs) {
				return &worktrees[i]
			}
		}
	}
	for i := range worktrees {
		if worktrees[i].Matches(target) {
			return &worktrees[i]
		}
	}
	return nil
}

// Remove deletes a Git worktree at the specified path.
//
// This runs `git worktree remove <worktreePath>`. If force is true, the
// --force flag is added to allow removal of worktrees with uncommitted
// changes or untracked files.
func (m *Manager) Remove(repoPath, worktreePath string, force bool) error {
	args := []string{"worktree", "remove", worktreePath}
	if force {
		args = []string{"worktree", "remove", "--force", worktreePath}
	}
	_, err := m.runGit(repoPath, args...)
	return err
}

// Prune removes administrative data of worktrees whose directories are
// gone. It returns the entries that were (or, with dryRun, would be)
// pruned.
func (m *Manager) Prune(repoPath string, dryRun bool) ([]model.Worktree, error) {
	worktrees, err := m.List(repoPath)
	if err != nil {
		return nil, err
	}

	var stale []model.Worktree
	for _, wt := range worktrees {
		if wt.IsMain || wt.Locked {
			continue
		}
		if _, statErr := os.Stat(wt.Path); wt.Prunable || errors.Is(statErr, os.ErrNotExist) {
			stale = append(stale, wt)
		}
	}

	if dryRun {
		return stale, nil
	}
	if _, err := m.runGit(repoPath, "worktree", "prune"); err != nil {
		return nil, err
	}
	return stale, nil
}

// Fetch updates remote-tracking refs for remote. A non-empty ref limits
// the fetch to that ref.
func (m *Manager) Fetch(repoPath, remote, ref string) error {
	args := []string{"fetch", "--quiet", remote}
	if ref != "" {
		args = append(args, ref)
	}
	_, err := m.runGit(repoPath, args...)
	return err
}

// IsWorktree checks whether the given path is a linked Git worktree (as
// opposed to a main repository working directory).
//
// Linked worktrees have a .git FILE containing a "gitdir:" pointer to
// <main>/.git/worktrees/<name>; the main working directory has a .git
// DIRECTORY.
func (m *Manager) IsWorktree(path string) bool {
	gitPath := filepath.Join(path, ".git")

	info, err := os.Lstat(gitPath)
	if err != nil || info.IsDir() {
		return false
	}

	content, err := os.ReadFile(gitPath)
	if err != nil {
		return false
	}
	return strings.HasPrefix(string(content), "gitdir:")
}

// CurrentBranch returns the short name of the branch checked out at path,
// or "" on a detached HEAD.
func (m *Manager) CurrentBranch(path string) string {
	out, err := m.runGit(path, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// BranchExists reports whether a local branch with the given name exists.
// Unlike `rev-parse --verify`, tags and commit hashes do not count.
func (m *Manager) BranchExists(repoPath, branch string) bool {
	_, err := m.runGit(repoPath, "show-ref", "--verify", "--quiet", model.BranchRef(branch))
	return err == nil
}

// RemoteBranchExists reports whether refs/remotes/<remote>/<branch> exists.
func (m *Manager) RemoteBranchExists(repoPath, remote, branch string) bool {
	if remote == "" {
		return false
	}
	_, err := m.runGit(repoPath, "show-ref", "--verify", "--quiet", "refs/remotes/"+remote+"/"+branch)
	return err == nil
}

// LocalBranches returns the short names of all local branches.
func (m *Manager) LocalBranches(repoPath string) ([]string, error) {
	out, err := m.runGit(repoPath, "for-each-ref", "--format=%(refname:short)", "refs/heads/")
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}

// RevisionExists reports whether rev resolves to a commit.
func (m *Manager) RevisionExists(repoPath, rev string) bool {
	_, err := m.runGit(repoPath, "rev-parse", "--verify", "--quiet", rev+"^{commit}")
	return err == nil
}

// DeleteBranch deletes a local branch. Without force git refuses to delete
// branches that are not merged.
func (m *Manager) DeleteBranch(repoPath, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := m.runGit(repoPath, "branch", flag, branch)
	return err
}

// ValidateBranchName checks name with `git check-ref-format --branch`.
func (m *Manager) ValidateBranchName(repoPath, name string) error {
	if name == "" || strings.HasPrefix(name, "-") {
		return model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("invalid branch name %q", name))
	}
	if _, err := m.runGit(repoPath, "check-ref-format", "--branch", name); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("invalid branch name %q", name), err)
	}
	return nil
}

// runGit executes a git command in repoPath and returns its stdout.
//
// On failure the returned model.CLIError carries ExitGitError and the
// trimmed stderr output. repoPath is passed via -C so the process working
// directory is never changed.
func (m *Manager) runGit(repoPath string, args ...string) (string, error) {
	bin := m.GitBinary
	if bin == "" {
		bin = "git"
	}
	fullArgs := append([]string{"-C", repoPath}, args...)

	// #nosec G204 -- arguments are assembled by this package
	cmd := exec.Command(bin, fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logrus.Debugf("running git %s", strings.Join(fullArgs, " "))
	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}
	return stdout.String(), nil
}

// parsePorcelainOutput parses `git worktree list --porcelain` into
// worktree entries.
//
// Blocks are separated by blank lines. Within a block each line is either
// "key value" or a standalone marker ("bare", "detached", "locked",
// "prunable"). locked and prunable may carry a reason after the keyword.
func parsePorcelainOutput(output string) []model.Worktree {
	var worktrees []model.Worktree

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	var current *model.Worktree
	flush := func() {
		if current != nil {
			current.IsMain = len(worktrees) == 0
			worktrees = append(worktrees, *current)
			current = nil
		}
	}

	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			flush()
			continue
		}

		key, value, _ := strings.Cut(line, " ")
		if key == "worktree" {
			flush()
			current = &model.Worktree{Path: value}
			continue
		}
		if current == nil {
			continue
		}

		switch key {
		case "HEAD":
			current.HEAD = value
		case "branch":
			current.Branch = value
		case "bare":
			current.IsBare = true
		case "detached":
			current.Detached = true
		case "locked":
			current.Locked = true
		case "prunable":
			current.Prunable = true
		}
	}
	flush()

	return worktrees
}
