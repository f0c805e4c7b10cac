// Package export encodes scrape records as downloadable files.
package export

import (
	"fmt"
	"strings"

	"github.com/use-agent/scrapeui/models"
)

// Format is a download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats in the order the UI offers them.
var Formats = []Format{FormatCSV, FormatJSON, FormatXLSX}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", models.NewScrapeError(models.ErrCodeInvalidInput,
		fmt.Sprintf("unsupported export format %q", s), nil)
}

// FileName is the attachment name offered for downloads.
func (f Format) FileName() string { return "scraped_data." + string(f) }

// MIME is the Content-Type of an encoded file.
func (f Format) MIME() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Encode serializes records in format f.
func Encode(f Format, records []models.Record) ([]byte, error) {
	switch f {
	case FormatCSV:
		return CSV(records)
	case FormatJSON:
		return JSON(records)
	case FormatXLSX:
		return XLSX(records)
	default:
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unsupported export format %q", string(f)), nil)
	}
}

// Columns returns the union of field names across records in first-seen
// order, visiting each record's keys in canonical order.
func Columns(records []models.Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range records {
		for _, k := range r.Keys() {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}
