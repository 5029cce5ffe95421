package git

import (
	"context"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GoGitGateway implements Gateway in-process with go-git.
// It emits the same raw line format as CLIGateway, so parsing stays in LogReader.
type GoGitGateway struct {
	repo *gogit.Repository
}

// OpenGoGitGateway opens the repository at path, detecting .git in parent directories.
func OpenGoGitGateway(path string) (*GoGitGateway, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	return &GoGitGateway{repo: repo}, nil
}

// ListCommits lists commits reachable from branch, newest first unless reverse is set.
// With mergesOnly it follows the first-parent chain and keeps commits with several parents.
func (g *GoGitGateway) ListCommits(ctx context.Context, branch string, reverse, mergesOnly bool) ([]string, error) {
	from, err := g.resolve(branch)
	if err != nil {
		return nil, err
	}

	var commits []*object.Commit
	if mergesOnly {
		commits, err = g.firstParentMerges(ctx, from)
	} else {
		commits, err = g.logAll(ctx, from)
	}
	if err != nil {
		return nil, err
	}

	if reverse {
		for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
			commits[i], commits[j] = commits[j], commits[i]
		}
	}

	lines := make([]string, len(commits))
	for i, c := range commits {
		lines[i] = FormatLogLine(recordFromCommit(c))
	}
	return lines, nil
}

func (g *GoGitGateway) logAll(ctx context.Context, from plumbing.Hash) ([]*object.Commit, error) {
	iter, err := g.repo.Log(&gogit.LogOptions{From: from, Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var commits []*object.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

func (g *GoGitGateway) firstParentMerges(ctx context.Context, from plumbing.Hash) ([]*object.Commit, error) {
	c, err := g.repo.CommitObject(from)
	if err != nil {
		return nil, err
	}

	var merges []*object.Commit
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.NumParents() > 1 {
			merges = append(merges, c)
		}
		if c.NumParents() == 0 {
			return merges, nil
		}
		c, err = c.Parent(0)
		if err != nil {
			return nil, err
		}
	}
}

// Checkout checks out a branch by name, or any other revision as a detached HEAD.
func (g *GoGitGateway) Checkout(_ context.Context, ref string) (string, error) {
	wt, err := g.repo.Worktree()
	if err != nil {
		return "", err
	}

	branchRef := plumbing.NewBranchReferenceName(ref)
	if _, err := g.repo.Reference(branchRef, true); err == nil {
		if err := wt.Checkout(&gogit.CheckoutOptions{Branch: branchRef}); err != nil {
			return "", err
		}
	} else {
		hash, err := g.repo.ResolveRevision(plumbing.Revision(ref))
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", ref, err)
		}
		if err := wt.Checkout(&gogit.CheckoutOptions{Hash: *hash}); err != nil {
			return "", err
		}
	}

	head, err := g.repo.Head()
	if err != nil {
		return "", err
	}
	c, err := g.repo.CommitObject(head.Hash())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(c.Message), nil
}

// CurrentHead returns the hash of HEAD.
func (g *GoGitGateway) CurrentHead(_ context.Context) (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", err
	}
	return head.Hash().String(), nil
}

func (g *GoGitGateway) resolve(branch string) (plumbing.Hash, error) {
	rev := strings.TrimSpace(branch)
	if rev == "" || strings.EqualFold(rev, "HEAD") {
		head, err := g.repo.Head()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return head.Hash(), nil
	}
	hash, err := g.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve %s: %w", rev, err)
	}
	return *hash, nil
}

func recordFromCommit(c *object.Commit) CommitRecord {
	// Extract first line of commit message
	subject := c.Message
	if idx := strings.IndexByte(subject, '\n'); idx != -1 {
		subject = subject[:idx]
	}
	return CommitRecord{
		Hash:    c.Hash.String(),
		Date:    c.Author.When,
		Author:  c.Author.Name,
		Subject: strings.TrimRight(subject, "\r"),
	}
}
