package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.API.Timeout)
	}
	if cfg.Assist.TargetAudience != "Young adults aged 18-30" {
		t.Fatalf("unexpected assist defaults %+v", cfg.Assist)
	}
}

func TestFromYAMLKeepsDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("api:\n  base_url: https://ideas.example.com\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.API.BaseURL != "https://ideas.example.com" {
		t.Fatalf("override lost: %q", cfg.API.BaseURL)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Fatalf("default server addr lost: %q", cfg.Server.Addr)
	}
}

func TestValidateRejectsRelativeBaseURL(t *testing.T) {
	if _, err := FromYAML([]byte("api:\n  base_url: /api\n")); err == nil {
		t.Fatalf("expected error for relative base url")
	}
	if _, err := FromYAML([]byte("log:\n  level: loud\n")); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOptional(dir)
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg.API.BaseURL == "" {
		t.Fatalf("expected defaults when file is missing")
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("Load should fail without a file")
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("server:\n  addr: 0.0.0.0:9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
}

func TestPlannerToken(t *testing.T) {
	cfg := Default()
	cfg.Planner.TokenEnv = "IDEAVAULT_TEST_PLANNER_TOKEN"
	t.Setenv("IDEAVAULT_TEST_PLANNER_TOKEN", " secret ")
	if got := cfg.PlannerToken(); got != "secret" {
		t.Fatalf("got %q", got)
	}
}
