package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/use-agent/scrapeui/models"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultPresets []byte

type presetsFile struct {
	Presets []models.Preset `yaml:"presets"`
}

// LoadPresets returns the quick-selector presets. An empty path yields the
// embedded defaults; otherwise the YAML file at path replaces them.
func LoadPresets(path string) ([]models.Preset, error) {
	if path == "" {
		return ParsePresets(bytes.NewReader(defaultPresets))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("presets: open %s: %w", path, err)
	}
	defer f.Close()

	return ParsePresets(f)
}

// ParsePresets decodes and validates a presets YAML document.
func ParsePresets(r io.Reader) ([]models.Preset, error) {
	var pf presetsFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil {
		return nil, fmt.Errorf("presets: parse YAML: %w", err)
	}
	if len(pf.Presets) == 0 {
		return nil, fmt.Errorf("presets: at least one preset is required")
	}
	for i, p := range pf.Presets {
		if p.Label == "" {
			return nil, fmt.Errorf("presets: entry %d: label is required", i)
		}
		if p.Selector == "" {
			return nil, fmt.Errorf("presets: entry %d (%s): selector is required", i, p.Label)
		}
	}
	return pf.Presets, nil
}
