package worktree

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// RepoPlaceholder is replaced by the repository name in WORKTREE_ROOT.
const RepoPlaceholder = "{repo}"

// Dir returns the directory that holds the linked worktrees of a
// repository. template is resolved relative to mainRoot unless it is
// absolute or starts with "~/".
//
// With the default template "../{repo}-worktrees", a repository at
// /src/app keeps its worktrees in /src/app-worktrees.
func Dir(mainRoot, repoName, template string) string {
	expanded := strings.ReplaceAll(template, RepoPlaceholder, repoName)
	if strings.HasPrefix(expanded, "~/") || expanded == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
		}
	}
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded)
	}
	return filepath.Clean(filepath.Join(mainRoot, expanded))
}

// PathFor returns the worktree directory for branch inside dir. Branch
// names with slashes become nested directories.
func PathFor(dir, branch string) string {
	return filepath.Join(dir, filepath.FromSlash(branch))
}

// Within reports whether path is stop or lies below it.
func Within(path, stop string) bool {
	rel, err := filepath.Rel(stop, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// RemoveEmptyParents deletes path and its parent directories while they
// are empty, up to and including stop. Directories outside stop are never
// touched. It is used after `git worktree remove` so that removing
// "feature/login" does not leave an empty feature/ directory behind.
func RemoveEmptyParents(path, stop string) {
	path = filepath.Clean(path)
	stop = filepath.Clean(stop)
	if !Within(path, stop) {
		return
	}

	for cur := path; ; cur = filepath.Dir(cur) {
		if err := os.Remove(cur); err != nil && !errors.Is(err, os.ErrNotExist) {
			return
		}
		if cur == stop || cur == filepath.Dir(cur) {
			return
		}
	}
}
