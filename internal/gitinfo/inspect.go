package gitinfo

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
)

// Summary describes the checked-out state of one worktree.
type Summary struct {
	// ShortHash is the abbreviated HEAD commit hash.
	ShortHash string `json:"shortHash"`

	// Subject is the first line of the HEAD commit message.
	Subject string `json:"subject"`

	// CommittedAt is the committer timestamp of HEAD.
	CommittedAt time.Time `json:"committedAt"`

	// Clean is true when the worktree has no staged, unstaged or
	// untracked changes.
	Clean bool `json:"clean"`

	// Changes counts the entries reported by the status.
	Changes int `json:"changes"`
}

// shortHashLen matches git's default abbreviation length.
const shortHashLen = 7

// Inspect opens the worktree at path and summarizes its HEAD commit and
// working tree status.
func Inspect(path string) (*Summary, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD of %s: %w", path, err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit of %s: %w", path, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree %s: %w", path, err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("status of %s: %w", path, err)
	}

	hash := head.Hash().String()
	if len(hash) > shortHashLen {
		hash = hash[:shortHashLen]
	}

	return &Summary{
		ShortHash:   hash,
		Subject:     subject(commit.Message),
		CommittedAt: commit.Committer.When,
		Clean:       status.IsClean(),
		Changes:     len(status),
	}, nil
}

// subject returns the first line of a commit message.
func subject(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return strings.TrimSpace(line)
}

// State renders the summary as "clean" or "N changes".
func (s *Summary) State() string {
	if s.Clean {
		return "clean"
	}
	if s.Changes == 1 {
		return "1 change"
	}
	return fmt.Sprintf("%d changes", s.Changes)
}
