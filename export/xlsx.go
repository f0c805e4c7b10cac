package export

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/use-agent/scrapeui/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the single worksheet in XLSX exports.
const SheetName = "Scraped Data"

// XLSX writes a workbook with one sheet: a header row, then one row per
// record, in the same column order as CSV.
func XLSX(records []models.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	cols := Columns(records)
	for i, c := range cols {
		if err := setCell(f, i+1, 1, c); err != nil {
			return nil, err
		}
	}
	for r, rec := range records {
		for i, c := range cols {
			v, ok := rec[c]
			if !ok {
				continue
			}
			if err := setCell(f, i+1, r+2, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// setCell writes one string cell. Excel caps a cell at
// excelize.TotalCellChars characters; longer values are cut by excelize and
// reported here.
func setCell(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("export: cell name: %w", err)
	}
	if n := utf8.RuneCountInString(value); n > excelize.TotalCellChars {
		slog.Warn("xlsx cell value truncated",
			"cell", cell, "chars", n, "limit", excelize.TotalCellChars)
	}
	if err := f.SetCellStr(SheetName, cell, value); err != nil {
		return fmt.Errorf("export: set cell %s: %w", cell, err)
	}
	return nil
}
