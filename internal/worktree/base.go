package worktree

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/thekniru/kniru-wt/internal/model"
)

// ResolveBase picks the start point for a new branch.
//
// Resolution order:
//  1. requested (the -b flag) must resolve locally, or as <remote>/<requested>.
//  2. configured (DEFAULT_BASE_BRANCH or the project baseBranch) is used when
//     it exists locally or on the remote; otherwise a warning is logged.
//  3. the branch currently checked out at repoPath.
//  4. "HEAD" when detached.
func (m *Manager) ResolveBase(repoPath, requested, configured, remote string) (string, error) {
	if requested != "" {
		if m.RevisionExists(repoPath, requested) {
			return requested, nil
		}
		if m.RemoteBranchExists(repoPath, remote, requested) {
			return remote + "/" + requested, nil
		}
		return "", model.NewCLIError(model.ExitBranchNotFound, fmt.Sprintf("base branch not found: %s", requested))
	}

	if configured != "" {
		if m.BranchExists(repoPath, configured) {
			return configured, nil
		}
		if m.RemoteBranchExists(repoPath, remote, configured) {
			return remote + "/" + configured, nil
		}
		logrus.Warnf("default base branch %q not found, using the current branch", configured)
	}

	if current := m.CurrentBranch(repoPath); current != "" {
		return current, nil
	}
	return "HEAD", nil
}
