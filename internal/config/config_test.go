package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("expected default port 8090, got %q", cfg.Port)
	}
	if cfg.PlaybooksDir != "playbooks" {
		t.Errorf("expected default playbooks dir, got %q", cfg.PlaybooksDir)
	}
	if cfg.ProgressDir != cfg.PlaybooksDir {
		t.Errorf("progress dir must follow playbooks dir, got %q", cfg.ProgressDir)
	}
	if !cfg.Autosave {
		t.Error("autosave must default on")
	}
	if cfg.SearchTopK != 7 || cfg.SearchIndexTTL != 10*time.Minute {
		t.Errorf("unexpected search defaults: %d, %v", cfg.SearchTopK, cfg.SearchIndexTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PROGRESS_DIR", "/var/lib/playtrack")
	t.Setenv("AUTOSAVE", "false")
	t.Setenv("SEARCH_TOP_K", "3")
	t.Setenv("SEARCH_INDEX_TTL", "30s")

	cfg := Load()
	if cfg.Port != "9000" || cfg.ProgressDir != "/var/lib/playtrack" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Autosave {
		t.Error("AUTOSAVE=false must disable autosave")
	}
	if cfg.SearchTopK != 3 || cfg.SearchIndexTTL != 30*time.Second {
		t.Errorf("unexpected search settings: %d, %v", cfg.SearchTopK, cfg.SearchIndexTTL)
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "-2")
	t.Setenv("SEARCH_INDEX_TTL", "not-a-duration")
	t.Setenv("AUTOSAVE", "maybe")

	cfg := Load()
	if cfg.SearchTopK != 7 || cfg.SearchIndexTTL != 10*time.Minute || !cfg.Autosave {
		t.Errorf("bad env values must fall back to defaults: %+v", cfg)
	}
}

func TestLoadHeuristics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	data := `excluded_titles:
  - appendix
owner_phrases:
  - blue team
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := LoadHeuristics(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(h.ExcludedTitles, []string{"appendix"}) {
		t.Errorf("unexpected excluded titles: %v", h.ExcludedTitles)
	}
	if !reflect.DeepEqual(h.OwnerPhrases, []string{"blue team"}) {
		t.Errorf("unexpected owner phrases: %v", h.OwnerPhrases)
	}
	if h.HeaderKeywords != nil {
		t.Errorf("unset list must stay nil, got %v", h.HeaderKeywords)
	}
}

func TestLoadHeuristics_EmptyPathAndErrors(t *testing.T) {
	if _, err := LoadHeuristics(""); err != nil {
		t.Errorf("empty path is not an error, got %v", err)
	}
	if _, err := LoadHeuristics(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file must error")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("excluded_titles: {not: a list}"), 0o644)
	if _, err := LoadHeuristics(bad); err == nil {
		t.Error("malformed yaml must error")
	}
}
