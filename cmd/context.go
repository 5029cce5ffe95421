package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/robmazan/CodeAnalyzer/config"
	"github.com/robmazan/CodeAnalyzer/internal/aggregation"
	"github.com/robmazan/CodeAnalyzer/internal/git"
)

// CommandContext holds common state for command execution.
type CommandContext struct {
	Config   *config.Config
	RepoPath string
	Branch   string
	Gateway  git.Gateway
}

// NewCommandContext loads configuration and opens the repository with the configured engine.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	repoPath := c.String("repo")
	gateway, err := openGateway(cfg.Backfill.Engine, repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	return &CommandContext{
		Config:   cfg,
		RepoPath: repoPath,
		Branch:   cfg.Backfill.Branch,
		Gateway:  gateway,
	}, nil
}

// ReadHistory returns the branch history oldest first.
func (cc *CommandContext) ReadHistory(ctx context.Context) (git.CommitSequence, error) {
	seq, err := git.NewLogReader(cc.Gateway).Read(ctx, cc.Branch, true, cc.Config.Backfill.MergesOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return seq, nil
}

// PathFilter builds the include/exclude filter from configuration.
func (cc *CommandContext) PathFilter() (*aggregation.PathFilter, error) {
	return aggregation.NewPathFilter(cc.Config.Filters.Include, cc.Config.Filters.Exclude)
}

// ChangeOptions builds the numstat read options from the date flags.
func (cc *CommandContext) ChangeOptions(c *cli.Context) (git.ChangeOptions, error) {
	since, err := parseDateFlag(c.String("since"))
	if err != nil {
		return git.ChangeOptions{}, err
	}
	until, err := parseDateFlag(c.String("until"))
	if err != nil {
		return git.ChangeOptions{}, err
	}
	if until != nil {
		// Include the whole until day.
		end := until.Add(24*time.Hour - time.Second)
		until = &end
	}
	return git.ChangeOptions{Branch: cc.Branch, Since: since, Until: until}, nil
}

// changeReader returns a gateway that can read per-file changes.
// Only the git CLI produces numstat output, so go-git falls back to it.
func (cc *CommandContext) changeReader() git.ChangeReader {
	if r, ok := cc.Gateway.(git.ChangeReader); ok {
		return r
	}
	return git.NewCLIGateway(cc.RepoPath)
}

func openGateway(engine, repoPath string) (git.Gateway, error) {
	switch engine {
	case config.EngineGoGit:
		return git.OpenGoGitGateway(repoPath)
	case config.EngineCLI, "":
		return git.NewCLIGateway(repoPath), nil
	default:
		return nil, fmt.Errorf("unknown git engine %q", engine)
	}
}

// dryRunGateway reads real history but never touches the working tree.
type dryRunGateway struct {
	git.Gateway
	head string
}

func (g *dryRunGateway) Checkout(_ context.Context, ref string) (string, error) {
	g.head = ref
	return "", nil
}

func (g *dryRunGateway) CurrentHead(ctx context.Context) (string, error) {
	if g.head != "" {
		return g.head, nil
	}
	return g.Gateway.CurrentHead(ctx)
}
