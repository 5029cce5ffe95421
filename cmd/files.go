package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/robmazan/CodeAnalyzer/internal/output"
	"github.com/robmazan/CodeAnalyzer/internal/progress"
	"github.com/robmazan/CodeAnalyzer/internal/sonar"
)

// FilesCmd returns the files command.
func FilesCmd() *cli.Command {
	return &cli.Command{
		Name:   "files",
		Usage:  "Show current SonarQube measures per file",
		Flags:  flagSet(sonarFlags(), metricFlags(), reportFlags()),
		Action: filesAction,
	}
}

func filesAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.RequireProjectKey(); err != nil {
		return err
	}

	client := sonar.NewClient(cfg.Sonar.URL, cfg.Sonar.Token)
	spinner := progress.NewSpinner("Reading component tree")
	files, err := client.ComponentTree(c.Context, cfg.Backfill.ProjectKey, cfg.Sonar.Metrics)
	if err != nil {
		spinner.FinishError(err)
		return err
	}
	spinner.FinishSuccess()

	report := output.NewFileMeasuresReport(cfg.Backfill.ProjectKey, cfg.Sonar.Metrics, files, c.Int("top"))
	return writeReport(c, report)
}
