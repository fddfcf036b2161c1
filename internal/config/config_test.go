package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaultConfig(t *testing.T) {
	t.Setenv(APIBaseEnv, "")
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.API.BaseURL != DefaultAPIBase {
		t.Errorf("expected base url %q, got %q", DefaultAPIBase, cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 60*time.Second {
		t.Errorf("expected timeout 60s, got %s", cfg.API.Timeout)
	}
	if cfg.Toast.Duration != 2500*time.Millisecond {
		t.Errorf("expected toast duration 2.5s, got %s", cfg.Toast.Duration)
	}
	if cfg.Feed.MaxPosts != 20 {
		t.Errorf("expected max_posts 20, got %d", cfg.Feed.MaxPosts)
	}
	if cfg.Server.Port != 8010 {
		t.Errorf("expected port 8010, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	t.Setenv(APIBaseEnv, "")
	data := []byte(`
api:
  base_url: https://analyzer.example.com/
  timeout: 5s
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.API.BaseURL != "https://analyzer.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %s", cfg.API.Timeout)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Toast.Duration != 2500*time.Millisecond {
		t.Errorf("expected default toast duration, got %s", cfg.Toast.Duration)
	}
}

func TestEnvOverridesBaseURL(t *testing.T) {
	t.Setenv(APIBaseEnv, "http://10.0.0.5:9999")
	cfg, err := parse([]byte("api:\n  base_url: http://ignored\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://10.0.0.5:9999" {
		t.Errorf("expected env base url, got %q", cfg.API.BaseURL)
	}
}

func TestParseRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv(APIBaseEnv, "")
	if _, err := parse([]byte("api:\n  timeout: 0s\n")); err == nil {
		t.Error("expected error for zero timeout")
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv(APIBaseEnv, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != DefaultAPIBase {
		t.Errorf("expected default base url, got %q", cfg.API.BaseURL)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv(APIBaseEnv, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Feed.MinPostLength != 100 {
		t.Errorf("expected min_post_length 100, got %d", cfg.Feed.MinPostLength)
	}
}

func TestResolveConfigPathExplicitMissing(t *testing.T) {
	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}

func TestGetExportDir(t *testing.T) {
	cfg := &Config{}
	if cfg.GetExportDir() != "." {
		t.Errorf("expected '.', got %q", cfg.GetExportDir())
	}
}
