package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Heuristics overrides the named constant sets the parsing pipeline uses.
// Empty lists keep the built-in defaults.
type Heuristics struct {
	ExcludedTitles []string `yaml:"excluded_titles"`
	HeaderKeywords []string `yaml:"header_keywords"`
	OwnerPhrases   []string `yaml:"owner_phrases"`
}

// LoadHeuristics reads an optional YAML override file. An empty path is not
// an error; it just means defaults everywhere.
func LoadHeuristics(path string) (Heuristics, error) {
	var h Heuristics
	if path == "" {
		return h, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return h, fmt.Errorf("read heuristics file: %w", err)
	}
	if err := yaml.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("parse heuristics file: %w", err)
	}
	return h, nil
}
