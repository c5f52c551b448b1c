package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rubric_default.yaml
var defaultRubricYAML []byte

// Rubric is the grading configuration sent to the model with every
// submission. The rubric text itself is opaque to the pipeline; only the
// instructions' promised output format (numbered "N. SECTION: score/10"
// lines under a "SCORE: total/100" header) is load-bearing, because the
// reconciliation engine parses it back out.
type Rubric struct {
	Title        string   `yaml:"title"`
	Text         string   `yaml:"rubric"`
	Instructions []string `yaml:"instructions"`
}

// LoadRubric reads a rubric from path, or the embedded default when path is
// empty.
func LoadRubric(path string) (Rubric, error) {
	raw := defaultRubricYAML
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return Rubric{}, fmt.Errorf("read rubric file: %w", err)
		}
	}

	var r Rubric
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return Rubric{}, fmt.Errorf("parse rubric yaml: %w", err)
	}
	if r.Text == "" {
		return Rubric{}, fmt.Errorf("rubric file %q has no rubric text", path)
	}
	return r, nil
}
