package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/use-agent/scrapeui/models"
)

// CSV writes a header row followed by one row per record. Missing fields
// are empty cells. Empty input yields empty output. A single-column row
// holding an empty value is written as "" so readers do not skip it as a
// blank line.
func CSV(records []models.Record) ([]byte, error) {
	if len(records) == 0 {
		return []byte{}, nil
	}

	cols := Columns(records)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(cols); err != nil {
		return nil, fmt.Errorf("export: write csv header: %w", err)
	}

	row := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			row[i] = r[c]
		}
		if len(row) == 1 && row[0] == "" {
			w.Flush()
			buf.WriteString("\"\"\n")
			continue
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("export: write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
