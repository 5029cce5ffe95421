package git

import "context"

// Gateway is the version-control client the traversal engine drives.
type Gateway interface {
	// ListCommits returns raw log lines in LogFormat for branch.
	// reverse lists oldest first; mergesOnly restricts to first-parent merges.
	ListCommits(ctx context.Context, branch string, reverse, mergesOnly bool) ([]string, error)
	// Checkout makes ref the working-tree state and returns its commit message body.
	Checkout(ctx context.Context, ref string) (string, error)
	// CurrentHead returns the hash of the checked-out commit.
	CurrentHead(ctx context.Context) (string, error)
}

// ChangeReader reads per-commit file changes.
type ChangeReader interface {
	ReadChanges(ctx context.Context, opts ChangeOptions) ([]CommitChangeSet, error)
}

// Compile-time interface conformance checks.
var (
	_ Gateway      = (*CLIGateway)(nil)
	_ Gateway      = (*GoGitGateway)(nil)
	_ ChangeReader = (*CLIGateway)(nil)
)
