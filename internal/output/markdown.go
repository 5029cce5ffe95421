package output

import (
	"fmt"
	"strings"
)

// MarkdownWriter writes reports as Markdown tables.
type MarkdownWriter struct{}

// Write outputs the report as Markdown.
func (w *MarkdownWriter) Write(report Report, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintf(out, "# %s\n\n", report.Title())
	for _, line := range report.Summary() {
		fmt.Fprintf(out, "%s  \n", escapeMarkdown(line))
	}
	fmt.Fprintln(out)

	headers := report.Headers()
	fmt.Fprintf(out, "| %s |\n", strings.Join(headers, " | "))
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(out, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range report.Rows() {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = escapeMarkdown(c)
		}
		fmt.Fprintf(out, "| %s |\n", strings.Join(cells, " | "))
	}
	return nil
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
