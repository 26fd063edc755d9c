package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// SummaryLine is a labelled figure printed above the table.
type SummaryLine struct {
	Label string
	Value string
}

// Report is a titled table of classroom records.
type Report struct {
	Title   string
	Summary []SummaryLine
	Headers []string
	Rows    [][]string
}

// CSVExporter renders reports into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes summary lines first, then a blank separator and the table.
// Rows shorter than the header are padded.
func (e *CSVExporter) Render(report Report) ([]byte, error) {
	if len(report.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	if len(report.Summary) > 0 {
		for _, line := range report.Summary {
			if err := writer.Write([]string{line.Label, line.Value}); err != nil {
				return nil, fmt.Errorf("write csv summary: %w", err)
			}
		}
		if err := writer.Write([]string{""}); err != nil {
			return nil, fmt.Errorf("write csv separator: %w", err)
		}
	}

	if err := writer.Write(report.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range report.Rows {
		if err := writer.Write(normalise(row, len(report.Headers))); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func normalise(row []string, width int) []string {
	record := make([]string, width)
	copy(record, row)
	return record
}
