package cli

import (
	"os"

	"github.com/thekniru/kniru-wt/internal/config"
	"github.com/thekniru/kniru-wt/internal/model"
	"github.com/thekniru/kniru-wt/internal/worktree"
)

// env bundles what almost every command needs: the repository around the
// working directory and the merged configuration.
type env struct {
	cwd      string
	mgr      *worktree.Manager
	repo     *worktree.RepoInfo
	user     *config.UserConfig
	project  *config.Project
	settings config.Settings
}

// loadEnv discovers the repository containing the current directory and
// loads ~/.wtrc plus the project file from the main worktree.
func loadEnv() (*env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to determine current directory", err)
	}

	mgr := worktree.NewManager()
	repo, err := mgr.Discover(cwd)
	if err != nil {
		return nil, err
	}
	VerboseLog("repository %s (main worktree %s)", repo.Name, repo.MainRoot)

	user, err := config.LoadUser(configPath)
	if err != nil {
		return nil, err
	}
	project, err := config.LoadProject(repo.MainRoot)
	if err != nil {
		return nil, err
	}

	return &env{
		cwd:      cwd,
		mgr:      mgr,
		repo:     repo,
		user:     user,
		project:  project,
		settings: config.Merge(user, project),
	}, nil
}

// worktreesDir is the directory linked worktrees are created in.
func (e *env) worktreesDir() string {
	return worktree.Dir(e.repo.MainRoot, e.repo.Name, e.settings.WorktreeRoot)
}

// find resolves a branch name or path to a registered worktree.
func (e *env) find(target string) (*model.Worktree, error) {
	return e.mgr.Find(e.repo.MainRoot, target)
}
