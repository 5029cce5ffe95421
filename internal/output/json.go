package output

import (
	"encoding/json"
	"fmt"
)

// JSONWriter writes the report's data as indented JSON.
type JSONWriter struct{}

// Write outputs the report as JSON.
func (w *JSONWriter) Write(report Report, options OutputOptions) error {
	return writeJSON(report.Data(), options.OutputPath)
}

func writeJSON(data any, outputPath string) error {
	out, file, err := openOutputWriter(outputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
