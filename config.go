// config.go — optional YAML settings file.
//
// A settings file overrides only the keys it mentions; everything else keeps
// its default. Example:
//
//	context_lines: 5
//	max_value_repr: 200
//	watch: [total, best]
//	use_rich: false
//	rich_theme: plain
package stepscript

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileSettings uses pointer fields so absent keys are distinguishable from
// zero values.
type fileSettings struct {
	ContextLines *int     `yaml:"context_lines"`
	MaxValueRepr *int     `yaml:"max_value_repr"`
	Watch        []string `yaml:"watch"`
	UseRich      *bool    `yaml:"use_rich"`
	Theme        *string  `yaml:"rich_theme"`
}

// LoadSettings reads path and overlays it onto DefaultSettings.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	var fs fileSettings
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if fs.ContextLines != nil {
		s.ContextLines = *fs.ContextLines
	}
	if fs.MaxValueRepr != nil {
		s.MaxValueRepr = *fs.MaxValueRepr
	}
	if fs.Watch != nil {
		s.Watch = fs.Watch
	}
	if fs.UseRich != nil {
		s.UseRich = *fs.UseRich
	}
	if fs.Theme != nil {
		s.Theme = *fs.Theme
	}
	return s, nil
}
