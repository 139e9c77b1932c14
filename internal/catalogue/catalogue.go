// Package catalogue parses verb catalogue files. YAML and JSON documents are
// both accepted, as a list of verbs.
package catalogue

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"dutch-verb-trainer/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed verbs.yaml
var defaultVerbs []byte

// Default returns the built-in catalogue.
func Default() ([]domain.Verb, error) {
	return Parse(bytes.NewReader(defaultVerbs))
}

// Load reads a catalogue file, or the built-in catalogue when path is empty.
func Load(path string) ([]domain.Verb, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a list of verbs.
func Parse(r io.Reader) ([]domain.Verb, error) {
	var verbs []domain.Verb
	if err := yaml.NewDecoder(r).Decode(&verbs); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	seen := make(map[string]bool, len(verbs))
	for i, v := range verbs {
		if v.Infinitive == "" {
			return nil, fmt.Errorf("catalogue entry %d has no infinitive", i)
		}
		if seen[v.Infinitive] {
			return nil, fmt.Errorf("catalogue lists %q twice", v.Infinitive)
		}
		seen[v.Infinitive] = true
	}
	return verbs, nil
}

// Index keys verbs by infinitive.
func Index(verbs []domain.Verb) map[string]domain.Verb {
	out := make(map[string]domain.Verb, len(verbs))
	for _, v := range verbs {
		out[v.Infinitive] = v
	}
	return out
}
