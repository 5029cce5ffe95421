package git

import (
	"errors"

	gogit "github.com/go-git/go-git/v5"
)

// ErrDirtyWorkingDir is returned when the working directory has uncommitted changes.
var ErrDirtyWorkingDir = errors.New("working directory has uncommitted changes")

// IsDirty returns true if there are uncommitted changes in the working directory.
// Untracked files are not considered dirty.
func IsDirty(repoPath string) (bool, error) {
	repo, err := openRepo(repoPath)
	if err != nil {
		return false, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return false, err
	}

	status, err := wt.Status()
	if err != nil {
		return false, err
	}

	for _, s := range status {
		if s.Staging == gogit.Untracked && s.Worktree == gogit.Untracked {
			continue
		}
		if s.Staging != gogit.Unmodified || s.Worktree != gogit.Unmodified {
			return true, nil
		}
	}

	return false, nil
}

// CurrentRef returns the current branch name, or the commit hash for a detached HEAD.
func CurrentRef(repoPath string) (string, error) {
	repo, err := openRepo(repoPath)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", err
	}

	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	return head.Hash().String(), nil
}

func openRepo(path string) (*gogit.Repository, error) {
	return gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
}
