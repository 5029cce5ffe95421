package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/robmazan/CodeAnalyzer/internal/dispatch"
	"github.com/robmazan/CodeAnalyzer/internal/output"
	"github.com/robmazan/CodeAnalyzer/internal/progress"
	"github.com/robmazan/CodeAnalyzer/internal/sonar"
)

// metricFlags choose which SonarQube metrics are read back.
func metricFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "metric",
			Usage: "Metric key to read (can be specified multiple times, default from config)",
		},
		&cli.IntFlag{
			Name:  "parallelism",
			Usage: "Concurrent API requests (default from config: 4)",
		},
	}
}

// HistoryCmd returns the history command.
func HistoryCmd() *cli.Command {
	return &cli.Command{
		Name:   "history",
		Usage:  "Show the metrics SonarQube recorded for the commits a backfill visits",
		Flags:  flagSet(repoFlags(), traversalFlags(), sonarFlags(), metricFlags(), reportFlags()),
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	cc, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	cfg := cc.Config
	if err := cfg.RequireProjectKey(); err != nil {
		return err
	}

	seq, err := cc.ReadHistory(c.Context)
	if err != nil {
		return err
	}
	selected, err := dispatch.Selection(seq, cfg.Backfill.MergesOnly, cfg.Backfill.Step)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		fmt.Fprintln(c.App.Writer, "No commits found on branch "+cc.Branch+".")
		return nil
	}

	client := sonar.NewClient(cfg.Sonar.URL, cfg.Sonar.Token)
	spinner := progress.NewSpinner(fmt.Sprintf("Reading measures for %d commits", len(selected)))
	items, err := sonar.EnrichAll(c.Context, selected, client, cfg.Backfill.ProjectKey, cfg.Sonar.Metrics, cfg.Sonar.Parallelism)
	if err != nil {
		spinner.FinishError(err)
		return err
	}
	spinner.FinishSuccess()

	report := &output.HistoryReport{
		Branch:      cc.Branch,
		Component:   cfg.Backfill.ProjectKey,
		Metrics:     cfg.Sonar.Metrics,
		GeneratedAt: time.Now(),
		Items:       items,
	}
	return writeReport(c, report)
}
