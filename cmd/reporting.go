package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/robmazan/CodeAnalyzer/internal/output"
)

func writeReport(c *cli.Context, report output.Report) error {
	opts := OutputOptions(c)
	writer := output.NewReportWriter(opts.Format)
	return writer.Write(report, opts)
}
