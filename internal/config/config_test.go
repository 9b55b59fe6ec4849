package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8081" {
		t.Errorf("unexpected default port: %s", cfg.Port)
	}
	if len(cfg.Dataset.Candidates) != 2 || cfg.Dataset.Candidates[0] != "data/opportunities.seed.json" {
		t.Errorf("unexpected default candidates: %v", cfg.Dataset.Candidates)
	}
	if cfg.Collector.TerritoryCode != "974" {
		t.Errorf("unexpected default territory: %s", cfg.Collector.TerritoryCode)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "9000"
storage:
  path: /tmp/test.db
  namespace: test.ns
dataset:
  candidates:
    - only.json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port not overridden: %s", cfg.Port)
	}
	if cfg.Storage.Path != "/tmp/test.db" || cfg.Storage.Namespace != "test.ns" {
		t.Errorf("storage not overridden: %+v", cfg.Storage)
	}
	if len(cfg.Dataset.Candidates) != 1 || cfg.Dataset.Candidates[0] != "only.json" {
		t.Errorf("candidates not overridden: %v", cfg.Dataset.Candidates)
	}
	// Untouched sections keep their defaults.
	if cfg.Collector.MaxItems != 300 {
		t.Errorf("collector defaults lost: %+v", cfg.Collector)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("VEILLE_DATASET_CANDIDATES", "a.json, b.json")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "7777" {
		t.Errorf("env port not applied: %s", cfg.Port)
	}
	if len(cfg.Dataset.Candidates) != 2 || cfg.Dataset.Candidates[1] != "b.json" {
		t.Errorf("env candidates not applied: %v", cfg.Dataset.Candidates)
	}
}

func TestLoad_InvalidYAMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
