package output

import "encoding/csv"

// CSVWriter writes the report's table as CSV. Summary lines are not written.
type CSVWriter struct{}

// Write outputs the report as CSV.
func (w *CSVWriter) Write(report Report, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	writer := csv.NewWriter(out)
	records := append([][]string{report.Headers()}, report.Rows()...)
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}
