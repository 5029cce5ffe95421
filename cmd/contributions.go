package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/robmazan/CodeAnalyzer/internal/aggregation"
	"github.com/robmazan/CodeAnalyzer/internal/output"
)

// ContributionsCmd returns the contributions command.
func ContributionsCmd() *cli.Command {
	return &cli.Command{
		Name:    "contributions",
		Aliases: []string{"contrib"},
		Usage:   "Show lines changed per author and top-level directory",
		Flags:   flagSet(repoFlags(), filterFlags(), reportFlags()),
		Action:  contributionsAction,
	}
}

func contributionsAction(c *cli.Context) error {
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
	matrix := aggregation.NewContributionMatrix(filter)
	matrix.Process(changeSets)

	report := &output.ContributionReport{
		RepoPath: cc.RepoPath,
		Matrix:   matrix,
		Top:      c.Int("top"),
	}
	return writeReport(c, report)
}
