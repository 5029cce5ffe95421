package output

import "strings"

// Compile-time interface conformance checks.
var (
	_ ReportWriter = (*ConsoleWriter)(nil)
	_ ReportWriter = (*JSONWriter)(nil)
	_ ReportWriter = (*CSVWriter)(nil)
	_ ReportWriter = (*MarkdownWriter)(nil)

	_ Report = (*HistoryReport)(nil)
	_ Report = (*FileMeasuresReport)(nil)
	_ Report = (*FileStatsReport)(nil)
	_ Report = (*ContributionReport)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
)

// ParseFormat converts a string to an OutputFormat, defaulting to console.
func ParseFormat(s string) OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "csv":
		return FormatCSV
	case "markdown", "md":
		return FormatMarkdown
	default:
		return FormatConsole
	}
}

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	OutputPath string
}

// Report is tabular data that every writer can render.
type Report interface {
	Title() string
	// Summary lines printed above the table by human-readable writers.
	Summary() []string
	Headers() []string
	Rows() [][]string
	// Data is the value serialized by the JSON writer.
	Data() any
}

// ReportWriter writes a report in one format.
type ReportWriter interface {
	Write(report Report, options OutputOptions) error
}

// NewReportWriter creates a report writer for the specified format.
func NewReportWriter(format OutputFormat) ReportWriter {
	switch format {
	case FormatJSON:
		return &JSONWriter{}
	case FormatCSV:
		return &CSVWriter{}
	case FormatMarkdown:
		return &MarkdownWriter{}
	default:
		return &ConsoleWriter{}
	}
}
