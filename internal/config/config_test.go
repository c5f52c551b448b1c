package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFailsFastWithoutAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() succeeded without ANTHROPIC_API_KEY")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GraderModel != "claude-sonnet-4-20250514" {
		t.Errorf("GraderModel = %q", cfg.GraderModel)
	}
	if cfg.RetryMaxAttempts != 5 {
		t.Errorf("RetryMaxAttempts = %d, want 5", cfg.RetryMaxAttempts)
	}
	if cfg.RetryBaseDelay != 2*time.Second {
		t.Errorf("RetryBaseDelay = %v", cfg.RetryBaseDelay)
	}
}

func TestLoadModelOverride(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("GRADER_MODEL", "claude-haiku-4-5-20251001")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GraderModel != "claude-haiku-4-5-20251001" {
		t.Errorf("GraderModel = %q, want override", cfg.GraderModel)
	}
}

func TestLoadRubricDefault(t *testing.T) {
	r, err := LoadRubric("")
	if err != nil {
		t.Fatalf("LoadRubric() error = %v", err)
	}
	if !strings.Contains(r.Text, "TOTAL: 100 POINTS") {
		t.Errorf("embedded rubric missing total header")
	}
	if len(r.Instructions) == 0 {
		t.Fatalf("embedded rubric has no grading instructions")
	}
	// The score templates contain colons, which YAML only keeps as part of
	// the string when the items are quoted.
	joined := strings.Join(r.Instructions, "\n")
	for _, want := range []string{"N. SECTION: score/10", "SCORE: total/100"} {
		if !strings.Contains(joined, want) {
			t.Errorf("embedded instructions missing %q", want)
		}
	}
}

func TestLoadRubricMissingFile(t *testing.T) {
	if _, err := LoadRubric("/nonexistent/rubric.yaml"); err == nil {
		t.Fatalf("LoadRubric() succeeded on missing file")
	}
}
