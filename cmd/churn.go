package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/robmazan/CodeAnalyzer/internal/aggregation"
	"github.com/robmazan/CodeAnalyzer/internal/git"
	"github.com/robmazan/CodeAnalyzer/internal/output"
)

// ChurnCmd returns the churn command.
func ChurnCmd() *cli.Command {
	return &cli.Command{
		Name:   "churn",
		Usage:  "Rank files by lines changed",
		Flags:  flagSet(repoFlags(), filterFlags(), reportFlags()),
		Action: churnAction,
	}
}

func churnAction(c *cli.Context) error {
	cc, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	changeSets, err := cc.readChanges(c)
	if err != nil {
		return err
	}
	if len(changeSets) == 0 {
		fmt.Fprintln(c.App.Writer, "No commits found in the specified range.")
		return nil
	}

	filter, err := cc.PathFilter()
	if err != nil {
		return err
	}
	aggregator := aggregation.NewFileMetricsAggregator(filter)
	aggregator.Process(changeSets)

	report := output.NewFileStatsReport(cc.RepoPath, cc.Branch, aggregator.Ranked(), c.Int("top"))
	return writeReport(c, report)
}

// readChanges reads per-file line changes for the configured branch and date range.
func (cc *CommandContext) readChanges(c *cli.Context) ([]git.CommitChangeSet, error) {
	opts, err := cc.ChangeOptions(c)
	if err != nil {
		return nil, err
	}
	changeSets, err := cc.changeReader().ReadChanges(c.Context, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return changeSets, nil
}
