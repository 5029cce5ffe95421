package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// ConsoleWriter renders reports as aligned tables.
type ConsoleWriter struct{}

// Write outputs the report as a table.
func (w *ConsoleWriter) Write(report Report, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	color.New(color.FgGreen).Fprintln(out, report.Title())
	for _, line := range report.Summary() {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)

	if len(report.Rows()) == 0 {
		fmt.Fprintln(out, "No results.")
		return nil
	}
	return renderTable(out, report.Headers(), report.Rows())
}

func renderTable(out io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewTable(out,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header(headers)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
