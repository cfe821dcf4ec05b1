package worktree

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thekniru/kniru-wt/internal/model"
)

// setupTestRepo creates a temporary directory with an initialized Git
// repository named "test-repo" containing a single commit, and returns
// its absolute, symlink-resolved path.
//
// A local user.name and user.email are configured so that `git commit`
// works in CI environments without a global git configuration.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	parent, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	dir := filepath.Join(parent, "test-repo")
	require.NoError(t, os.Mkdir(dir, 0o755))

	runTestGit(t, dir, "init")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")
	runTestGit(t, dir, "config", "commit.gpgsign", "false")

	err = os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test Repo\n"), 0o644)
	require.NoError(t, err, "failed to create initial file")

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

// runTestGit runs a git command in dir and fails the test immediately if
// the command exits with a non-zero status.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

func TestDiscover(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	info, err := m.Discover(repoPath)
	require.NoError(t, err)

	assert.Equal(t, repoPath, info.Toplevel)
	assert.Equal(t, repoPath, info.MainRoot)
	assert.Equal(t, filepath.Join(repoPath, ".git"), info.CommonDir)
	assert.Equal(t, "test-repo", info.Name)
	assert.NotEmpty(t, info.CurrentBranch)
}

// TestDiscoverFromSubdirectory verifies discovery from below the toplevel.
func TestDiscoverFromSubdirectory(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	subDir := filepath.Join(repoPath, "sub", "dir")
	require.NoError(t, os.MkdirAll(subDir, 0o755))

	info, err := m.Discover(subDir)
	require.NoError(t, err)
	assert.Equal(t, repoPath, info.Toplevel)
	assert.Equal(t, repoPath, info.MainRoot)
}

// TestDiscoverFromLinkedWorktree verifies that the main root and name come
// from the main repository even when wt runs inside a linked worktree.
func TestDiscoverFromLinkedWorktree(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	wtPath := filepath.Join(filepath.Dir(repoPath), "test-repo-worktrees", "linked")
	require.NoError(t, m.AddNewBranch(repoPath, "linked", wtPath, ""))

	info, err := m.Discover(wtPath)
	require.NoError(t, err)
	assert.Equal(t, wtPath, info.Toplevel)
	assert.Equal(t, repoPath, info.MainRoot)
	assert.Equal(t, "test-repo", info.Name)
	assert.Equal(t, "linked", info.CurrentBranch)
}

// TestDiscoverSubmodule verifies that a submodule is its own main
// worktree even though its .git is a file pointing into the superproject.
func TestDiscoverSubmodule(t *testing.T) {
	source := setupTestRepo(t)
	super := setupTestRepo(t)
	runTestGit(t, super, "-c", "protocol.file.allow=always", "submodule", "add", source, "mod")
	modPath := filepath.Join(super, "mod")
	m := NewManager()

	info, err := m.Discover(modPath)
	require.NoError(t, err)
	assert.Equal(t, modPath, info.Toplevel)
	assert.Equal(t, modPath, info.MainRoot)
	assert.Equal(t, filepath.Join(super, ".git", "modules", "mod"), info.CommonDir)
	assert.Equal(t, "mod", info.Name)
	assert.Equal(t, filepath.Join(super, "mod-worktrees"), Dir(info.MainRoot, info.Name, "../{repo}-worktrees"))

	wtPath := filepath.Join(super, "mod-worktrees", "subx")
	require.NoError(t, m.AddNewBranch(modPath, "subx", wtPath, ""))

	info, err = m.Discover(wtPath)
	require.NoError(t, err)
	assert.Equal(t, modPath, info.MainRoot, "core.worktree points back at the submodule checkout")
	assert.Equal(t, "mod", info.Name)
}

// TestDiscoverSeparateGitDir verifies that a checkout created with
// --separate-git-dir is named after its working tree, not the git dir.
func TestDiscoverSeparateGitDir(t *testing.T) {
	parent, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	app := filepath.Join(parent, "app")
	gitDir := filepath.Join(parent, "gd.git")

	runTestGit(t, parent, "init", "--separate-git-dir="+gitDir, app)
	runTestGit(t, app, "config", "user.email", "test@example.com")
	runTestGit(t, app, "config", "user.name", "Test User")
	runTestGit(t, app, "config", "commit.gpgsign", "false")
	require.NoError(t, os.WriteFile(filepath.Join(app, "README.md"), []byte("# App\n"), 0o644))
	runTestGit(t, app, "add", ".")
	runTestGit(t, app, "commit", "-m", "initial commit")

	m := NewManager()
	info, err := m.Discover(app)
	require.NoError(t, err)
	assert.Equal(t, app, info.Toplevel)
	assert.Equal(t, app, info.MainRoot)
	assert.Equal(t, gitDir, info.CommonDir)
	assert.Equal(t, "app", info.Name)
	assert.Equal(t, filepath.Join(parent, "app-worktrees"), Dir(info.MainRoot, info.Name, "../{repo}-worktrees"))
}

func TestDiscoverNotARepo(t *testing.T) {
	m := NewManager()

	_, err := m.Discover(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, model.ExitNotGitRepo, model.ExitCodeOf(err))
}

// TestAddNewBranch verifies that a new branch is created and checked out
// in the new worktree, including nested parent directories.
func TestAddNewBranch(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	worktreePath := filepath.Join(t.TempDir(), "worktrees", "feature", "auth")

	err := m.AddNewBranch(repoPath, "feature/auth", worktreePath, "")
	require.NoError(t, err, "AddNewBranch should succeed for a new branch")

	_, statErr := os.Stat(worktreePath)
	assert.NoError(t, statErr, "worktree directory should exist")
	assert.Equal(t, "feature/auth", m.CurrentBranch(worktreePath))
	assert.True(t, m.BranchExists(repoPath, "feature/auth"))
}

func TestAddNewBranchWithBase(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	mainBranch := m.CurrentBranch(repoPath)
	require.NotEmpty(t, mainBranch)

	worktreePath := filepath.Join(t.TempDir(), "from-base")
	require.NoError(t, m.AddNewBranch(repoPath, "from-base", worktreePath, mainBranch))
	assert.Equal(t, "from-base", m.CurrentBranch(worktreePath))
}

// TestAddNewBranchExisting verifies that creating an existing branch is
// reported with ExitAlreadyExists before git is invoked.
func TestAddNewBranchExisting(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	runTestGit(t, repoPath, "branch", "taken")

	err := m.AddNewBranch(repoPath, "taken", filepath.Join(t.TempDir(), "taken"), "")
	require.Error(t, err)
	assert.Equal(t, model.ExitAlreadyExists, model.ExitCodeOf(err))
}

func TestAddNewBranchPathExists(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	worktreePath := t.TempDir()
	err := m.AddNewBranch(repoPath, "fresh", worktreePath, "")
	require.Error(t, err)
	assert.Equal(t, model.ExitAlreadyExists, model.ExitCodeOf(err))
	assert.False(t, m.BranchExists(repoPath, "fresh"), "no branch should be created on failure")
}

// TestAddExisting verifies checking out an existing branch into a worktree.
func TestAddExisting(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	runTestGit(t, repoPath, "branch", "existing-branch")

	worktreePath := filepath.Join(t.TempDir(), "existing-branch-wt")
	require.NoError(t, m.AddExisting(repoPath, "existing-branch", worktreePath))
	assert.Equal(t, "existing-branch", m.CurrentBranch(worktreePath))
}

// TestAddTracking simulates a remote-only branch by cloning the test repo
// and creating the branch in the origin.
func TestAddTracking(t *testing.T) {
	origin := setupTestRepo(t)
	runTestGit(t, origin, "branch", "remote-only")

	clone := filepath.Join(t.TempDir(), "clone")
	out, err := exec.Command("git", "clone", "--quiet", origin, clone).CombinedOutput()
	require.NoError(t, err, string(out))

	m := NewManager()
	assert.False(t, m.BranchExists(clone, "remote-only"))
	assert.True(t, m.RemoteBranchExists(clone, "origin", "remote-only"))

	worktreePath := filepath.Join(t.TempDir(), "remote-only")
	require.NoError(t, m.AddTracking(clone, "remote-only", worktreePath, "origin"))
	assert.Equal(t, "remote-only", m.CurrentBranch(worktreePath))

	upstream := runTestGit(t, worktreePath, "rev-parse", "--abbrev-ref", "@{upstream}")
	assert.Equal(t, "origin/remote-only\n", upstream)
}

// TestList verifies that List returns the main repository first and all
// linked worktrees.
func TestList(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	wt1 := filepath.Join(base, "wt1")
	wt2 := filepath.Join(base, "wt2")

	require.NoError(t, m.AddNewBranch(repoPath, "branch-1", wt1, ""))
	require.NoError(t, m.AddNewBranch(repoPath, "branch-2", wt2, ""))

	worktrees, err := m.List(repoPath)
	require.NoError(t, err)
	require.Len(t, worktrees, 3, "should list main repo + 2 worktrees")

	assert.Equal(t, repoPath, worktrees[0].Path)
	assert.True(t, worktrees[0].IsMain)
	assert.False(t, worktrees[1].IsMain)
	assert.False(t, worktrees[2].IsMain)

	paths := []string{worktrees[1].Path, worktrees[2].Path}
	assert.ElementsMatch(t, []string{wt1, wt2}, paths)

	for _, wt := range worktrees {
		assert.NotEmpty(t, wt.HEAD, "each worktree should have a HEAD commit")
		assert.NotEmpty(t, wt.Branch, "each worktree should have a branch ref")
	}
}

func TestFind(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	worktreePath := filepath.Join(filepath.Dir(repoPath), "test-repo-worktrees", "fix", "typo")
	require.NoError(t, m.AddNewBranch(repoPath, "fix/typo", worktreePath, ""))

	wt, err := m.Find(repoPath, "fix/typo")
	require.NoError(t, err)
	assert.Equal(t, worktreePath, wt.Path)

	wt, err = m.Find(repoPath, worktreePath)
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/fix/typo", wt.Branch)

	_, err = m.Find(repoPath, "nope")
	require.Error(t, err)
	assert.Equal(t, model.ExitWorktreeNotFound, model.ExitCodeOf(err))
}

// TestRemove verifies that Remove deletes a worktree from both the
// filesystem and git's worktree registry.
func TestRemove(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	worktreePath := filepath.Join(t.TempDir(), "to-remove")
	require.NoError(t, m.AddNewBranch(repoPath, "to-remove", worktreePath, ""))

	require.NoError(t, m.Remove(repoPath, worktreePath, false))

	_, statErr := os.Stat(worktreePath)
	assert.True(t, os.IsNotExist(statErr), "worktree directory should be deleted")

	worktrees, err := m.List(repoPath)
	require.NoError(t, err)
	assert.Len(t, worktrees, 1)
}

// TestRemoveDirtyNeedsForce verifies that untracked files block a plain
// Remove and that force removes the worktree anyway.
func TestRemoveDirtyNeedsForce(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	worktreePath := filepath.Join(t.TempDir(), "dirty-wt")
	require.NoError(t, m.AddNewBranch(repoPath, "dirty-branch", worktreePath, ""))
	require.NoError(t, os.WriteFile(filepath.Join(worktreePath, "untracked.txt"), []byte("dirty"), 0o644))

	err := m.Remove(repoPath, worktreePath, false)
	require.Error(t, err)
	assert.Equal(t, model.ExitGitError, model.ExitCodeOf(err))

	require.NoError(t, m.Remove(repoPath, worktreePath, true))
	_, statErr := os.Stat(worktreePath)
	assert.True(t, os.IsNotExist(statErr))
}

// TestPrune verifies that a manually deleted worktree is reported and
// pruned, and that dry runs leave the registry alone.
func TestPrune(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	worktreePath := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, m.AddNewBranch(repoPath, "gone", worktreePath, ""))
	require.NoError(t, os.RemoveAll(worktreePath))

	stale, err := m.Prune(repoPath, true)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "refs/heads/gone", stale[0].Branch)

	worktrees, err := m.List(repoPath)
	require.NoError(t, err)
	assert.Len(t, worktrees, 2, "dry run must not prune")

	stale, err = m.Prune(repoPath, false)
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	worktrees, err = m.List(repoPath)
	require.NoError(t, err)
	assert.Len(t, worktrees, 1)
}

func TestBranchExists(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	mainBranch := m.CurrentBranch(repoPath)
	assert.True(t, m.BranchExists(repoPath, mainBranch))
	assert.False(t, m.BranchExists(repoPath, "non-existent-branch-xyz"))

	runTestGit(t, repoPath, "tag", "v1.0.0")
	assert.False(t, m.BranchExists(repoPath, "v1.0.0"), "tags are not branches")
	assert.True(t, m.RevisionExists(repoPath, "v1.0.0"), "tags are revisions")
}

func TestLocalBranches(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	runTestGit(t, repoPath, "branch", "feature/a")
	runTestGit(t, repoPath, "tag", "v1.0.0")

	branches, err := m.LocalBranches(repoPath)
	require.NoError(t, err)
	assert.Contains(t, branches, "feature/a")
	assert.Contains(t, branches, m.CurrentBranch(repoPath))
	assert.NotContains(t, branches, "v1.0.0")
}

func TestDeleteBranch(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	runTestGit(t, repoPath, "branch", "merged")
	require.NoError(t, m.DeleteBranch(repoPath, "merged", false))
	assert.False(t, m.BranchExists(repoPath, "merged"))
}

func TestValidateBranchName(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	tests := []struct {
		name     string
		hasError bool
	}{
		{"feature/auth", false},
		{"test-branch", false},
		{"fix-123", false},
		{"", true},
		{"-n", true},
		{"has space", true},
		{"double..dot", true},
		{"trailing/", true},
		{"ends.lock", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateBranchName(repoPath, tt.name)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestIsWorktree verifies that IsWorktree distinguishes a linked worktree
// (.git file) from the main repository (.git directory).
func TestIsWorktree(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager()

	assert.False(t, m.IsWorktree(repoPath), "main repo should not be identified as a worktree")

	worktreePath := filepath.Join(t.TempDir(), "wt-check")
	require.NoError(t, m.AddNewBranch(repoPath, "wt-check-branch", worktreePath, ""))
	assert.True(t, m.IsWorktree(worktreePath))

	assert.False(t, m.IsWorktree(t.TempDir()), "non-git directory is not a worktree")
}

func TestParsePorcelainOutput(t *testing.T) {
	input := `worktree /path/to/main
HEAD abc123def456
branch refs/heads/main

worktree /path/to/feature
HEAD def789abc012
branch refs/heads/feature
locked reason here

worktree /path/to/detached
HEAD 0123456789ab
detached
prunable gitdir file points to non-existent location

`
	result := parsePorcelainOutput(input)
	require.Len(t, result, 3)

	assert.Equal(t, "/path/to/main", result[0].Path)
	assert.Equal(t, "abc123def456", result[0].HEAD)
	assert.Equal(t, "refs/heads/main", result[0].Branch)
	assert.True(t, result[0].IsMain)

	assert.Equal(t, "/path/to/feature", result[1].Path)
	assert.True(t, result[1].Locked)
	assert.False(t, result[1].IsMain)

	assert.True(t, result[2].Detached)
	assert.True(t, result[2].Prunable)
	assert.Empty(t, result[2].Branch)
}

func TestParsePorcelainOutputBare(t *testing.T) {
	input := "worktree /path/to/bare-repo\nbare\n\n"
	result := parsePorcelainOutput(input)
	require.Len(t, result, 1)
	assert.True(t, result[0].IsBare)
	assert.True(t, result[0].IsMain)
}

func TestParsePorcelainOutputEmpty(t *testing.T) {
	assert.Empty(t, parsePorcelainOutput(""))
}
