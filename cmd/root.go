package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/robmazan/CodeAnalyzer/config"
	"github.com/robmazan/CodeAnalyzer/internal/output"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "codeanalyzer",
		Usage:   "Backfill SonarQube metrics over the history of a Git repository",
		Version: "1.0.0",
		Commands: []*cli.Command{
			BackfillCmd(),
			HistoryCmd(),
			FilesCmd(),
			ChurnCmd(),
			ContributionsCmd(),
			InitConfigCmd(),
		},
		DefaultCommand: "backfill",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		},
	}
}

// repoFlags are shared by every command that reads a repository.
func repoFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   "Branch to traverse (default from config: master)",
		},
	}
}

// traversalFlags select the commits a command visits.
func traversalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "step",
			Aliases: []string{"s"},
			Usage:   "Visit every n-th commit (default from config: 1)",
		},
		&cli.BoolFlag{
			Name:    "merges-only",
			Aliases: []string{"m"},
			Usage:   "Visit only the last merge commit of each day",
		},
		&cli.StringFlag{
			Name:  "engine",
			Usage: "Git engine (cli, go-git)",
		},
	}
}

// sonarFlags configure the metrics server.
func sonarFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "project-key",
			Aliases: []string{"k"},
			Usage:   "SonarQube project key",
		},
		&cli.StringFlag{
			Name:    "sonar-url",
			Usage:   "SonarQube server URL",
			EnvVars: []string{"SONAR_HOST_URL"},
		},
		&cli.StringFlag{
			Name:    "sonar-token",
			Usage:   "SonarQube user token",
			EnvVars: []string{"SONAR_TOKEN"},
		},
	}
}

// reportFlags control how tabular results are written.
func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown)",
			Value:   "console",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Number of top results to show (0 for all)",
			Value:   50,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
	}
}

// pathFlags restrict which paths are counted.
func pathFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
	}
}

// filterFlags restrict the commits and paths that are counted.
func filterFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:  "since",
			Usage: "Include commits since this date (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "until",
			Usage: "Include commits until this date (YYYY-MM-DD)",
		},
	}, pathFlags()...)
}

func flagSet(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}

// parseDateFlag parses a date string flag.
func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return &t, nil
}

// loadConfig loads configuration and applies the flags that were set explicitly.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("branch") {
		cfg.Backfill.Branch = c.String("branch")
	}
	if c.IsSet("step") {
		cfg.Backfill.Step = c.Int("step")
	}
	if c.IsSet("merges-only") {
		cfg.Backfill.MergesOnly = c.Bool("merges-only")
	}
	if c.IsSet("engine") {
		cfg.Backfill.Engine = c.String("engine")
	}
	if c.IsSet("project-key") {
		cfg.Backfill.ProjectKey = c.String("project-key")
	}
	if c.IsSet("no-restore") {
		cfg.Backfill.Restore = !c.Bool("no-restore")
	}

	// The scanner and the API client talk to the same server.
	if c.IsSet("sonar-url") {
		cfg.Scanner.HostURL = c.String("sonar-url")
		cfg.Sonar.URL = c.String("sonar-url")
	}
	if c.IsSet("sonar-token") {
		cfg.Scanner.Token = c.String("sonar-token")
		cfg.Sonar.Token = c.String("sonar-token")
	}
	if cfg.Scanner.HostURL == "" {
		cfg.Scanner.HostURL = cfg.Sonar.URL
	}
	if cfg.Scanner.Token == "" {
		cfg.Scanner.Token = cfg.Sonar.Token
	}

	if c.IsSet("scanner") {
		cfg.Scanner.Command = c.String("scanner")
	}
	if props := c.StringSlice("property"); len(props) > 0 {
		cfg.Scanner.Properties = append(cfg.Scanner.Properties, props...)
	}
	if metrics := c.StringSlice("metric"); len(metrics) > 0 {
		cfg.Sonar.Metrics = metrics
	}
	if c.IsSet("parallelism") {
		cfg.Sonar.Parallelism = c.Int("parallelism")
	}

	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// OutputOptions creates OutputOptions from CLI flags.
func OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     output.ParseFormat(c.String("format")),
		OutputPath: c.String("output"),
	}
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
