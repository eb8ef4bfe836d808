package report

import (
	"bytes"
	"encoding/csv"
	"time"
)

// RenderCSV renders the dataset as a semicolon-delimited CSV prefixed
// with a UTF-8 BOM so spreadsheet apps detect the encoding.
func RenderCSV(d *Dataset, today time.Time) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")

	w := csv.NewWriter(&buf)
	w.Comma = ';'

	records := [][]string{
		{d.Title},
		{"Gerado em: " + formatDateBR(&today)},
		{""},
		d.Headers,
	}
	records = append(records, d.Rows...)
	if len(d.Summary) > 0 {
		records = append(records, []string{""})
		for _, line := range d.Summary {
			records = append(records, []string{line})
		}
	}

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
