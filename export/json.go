package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/use-agent/scrapeui/models"
)

// JSON writes records as an indented array. Markup and non-ASCII text are
// written as-is. Empty input yields [].
func JSON(records []models.Record) ([]byte, error) {
	if len(records) == 0 {
		return []byte("[]"), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("export: encode json: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
