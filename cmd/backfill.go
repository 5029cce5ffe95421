package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/robmazan/CodeAnalyzer/internal/dispatch"
	"github.com/robmazan/CodeAnalyzer/internal/git"
	"github.com/robmazan/CodeAnalyzer/internal/progress"
	"github.com/robmazan/CodeAnalyzer/internal/sink"
)

// BackfillCmd returns the backfill command.
func BackfillCmd() *cli.Command {
	flags := flagSet(repoFlags(), traversalFlags(), sonarFlags(), pathFlags(), []cli.Flag{
		&cli.BoolFlag{
			Name:  "resume",
			Usage: "Start at the currently checked-out commit instead of the oldest one",
		},
		&cli.BoolFlag{
			Name:  "no-restore",
			Usage: "Leave the last visited commit checked out",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Print the scanner invocations without checking out or scanning",
		},
		&cli.StringFlag{
			Name:  "scanner",
			Usage: "Scanner executable (default from config: sonar-scanner)",
		},
		&cli.StringSliceFlag{
			Name:    "property",
			Aliases: []string{"D"},
			Usage:   "Extra scanner property as key=value (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:  "local",
			Usage: "Count lines locally instead of scanning; append JSON lines to this file (- for stdout)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Stream scanner output",
		},
	})

	return &cli.Command{
		Name:    "backfill",
		Aliases: []string{"b"},
		Usage:   "Check out historical commits and report each one to SonarQube",
		Flags:   flags,
		Action:  backfillAction,
	}
}

func backfillAction(c *cli.Context) error {
	cc, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	cfg := cc.Config
	if err := cfg.RequireProjectKey(); err != nil {
		return err
	}
	props, err := cfg.Scanner.PropertyMap()
	if err != nil {
		return err
	}

	dryRun := c.Bool("dry-run")
	gateway := cc.Gateway

	var originalRef string
	if dryRun {
		gateway = &dryRunGateway{Gateway: gateway}
	} else {
		dirty, err := git.IsDirty(cc.RepoPath)
		if err != nil {
			return fmt.Errorf("failed to check working directory: %w", err)
		}
		if dirty {
			return git.ErrDirtyWorkingDir
		}
		if originalRef, err = git.CurrentRef(cc.RepoPath); err != nil {
			return fmt.Errorf("failed to read current ref: %w", err)
		}
	}

	var scannerOut io.Writer
	if c.Bool("verbose") {
		scannerOut = os.Stderr
	}
	scanner := sink.NewScanner(sink.ScannerOptions{
		Command:    cfg.Scanner.Command,
		Dir:        cc.RepoPath,
		HostURL:    cfg.Scanner.HostURL,
		Token:      cfg.Scanner.Token,
		Properties: props,
		Output:     scannerOut,
	})
	var reportSink sink.ReportSink = scanner
	closeOutput := func() error { return nil }
	switch {
	case dryRun:
		reportSink = sink.DryRun{Scanner: scanner, Out: c.App.Writer}
	case c.String("local") != "":
		local, closeLocal, err := newLocalSink(c, cc)
		if err != nil {
			return err
		}
		closeOutput = closeLocal
		reportSink = local
	}

	var tracker *progress.Tracker
	warn := color.New(color.FgYellow).SprintfFunc()
	d := dispatch.New(gateway, reportSink, dispatch.Options{
		ProjectKey: cfg.Backfill.ProjectKey,
		Step:       cfg.Backfill.Step,
		OnProgress: func(p dispatch.Progress) {
			if dryRun {
				return
			}
			if tracker == nil {
				tracker = progress.NewTracker("Reporting", p.Total)
			}
			tracker.Set(p.Current, p.Commit.ShortHash())
		},
		OnReportFailure: func(f dispatch.Failure) {
			msg := warn("warning: %v", f.Err)
			if tracker != nil {
				tracker.Warn(msg)
				return
			}
			fmt.Fprintln(c.App.ErrWriter, msg)
		},
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := d.Run(ctx, dispatch.Request{
		Branch:     cc.Branch,
		MergesOnly: cfg.Backfill.MergesOnly,
		Resume:     c.Bool("resume"),
	})
	if err := closeOutput(); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if tracker != nil {
		if runErr != nil {
			tracker.FinishError(runErr)
		} else {
			tracker.FinishSuccess()
		}
	}

	// An interrupted run stays where it stopped so it can be resumed.
	if !dryRun && cfg.Backfill.Restore && ctx.Err() == nil && originalRef != "" {
		if _, err := cc.Gateway.Checkout(context.Background(), originalRef); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("failed to restore %s: %w", originalRef, err))
		}
	}

	if runErr != nil {
		if summary.Visited() > 0 {
			fmt.Fprintln(c.App.ErrWriter, summary.String())
		}
		if ctx.Err() != nil {
			fmt.Fprintln(c.App.ErrWriter, "interrupted; run again with --resume to continue from the checked-out commit")
		}
		return runErr
	}

	line := summary.String()
	if len(summary.Failures) > 0 {
		color.New(color.FgYellow).Fprintln(c.App.Writer, line)
	} else {
		color.New(color.FgGreen).Fprintln(c.App.Writer, line)
	}
	return nil
}

func newLocalSink(c *cli.Context, cc *CommandContext) (*sink.Local, func() error, error) {
	filter, err := cc.PathFilter()
	if err != nil {
		return nil, nil, err
	}
	out, closeOut, err := openLocalOutput(c.String("local"), c.App.Writer)
	if err != nil {
		return nil, nil, err
	}
	return &sink.Local{RepoPath: cc.RepoPath, Match: filter.Match, Out: out}, closeOut, nil
}

// openLocalOutput opens path for appending; "-" writes to stdout.
func openLocalOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() error {
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", path, err)
		}
		return nil
	}, nil
}
