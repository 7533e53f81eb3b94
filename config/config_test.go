package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://localhost:9000
  timeout_seconds: 10
report:
  district: SEHORE
  output_dir: /tmp/out
openai:
  enabled: true
  model: gpt-4o
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:9000" || cfg.API.TimeoutSeconds != 10 {
		t.Fatalf("api config: %+v", cfg.API)
	}
	if cfg.Report.District != "SEHORE" {
		t.Fatalf("district = %q", cfg.Report.District)
	}
	if cfg.OpenAI.Model != "gpt-4o" || !cfg.OpenAI.Enabled {
		t.Fatalf("openai config: %+v", cfg.OpenAI)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "report:\n  district: RAISEN\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Fatalf("default timeout = %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Report.OutputDir != "reports" || cfg.Report.TopPanchayats != 5 {
		t.Fatalf("report defaults: %+v", cfg.Report)
	}
	if cfg.Database.Path == "" {
		t.Fatal("database path default missing")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolveAPIKey(t *testing.T) {
	c := OpenAIConfig{APIKey: "literal", APIKeyEnv: "JSM_TEST_KEY"}
	if got := c.ResolveAPIKey(); got != "literal" {
		t.Fatalf("literal key = %q", got)
	}
	c.APIKey = ""
	t.Setenv("JSM_TEST_KEY", "from-env")
	if got := c.ResolveAPIKey(); got != "from-env" {
		t.Fatalf("env key = %q", got)
	}
}
