package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.Output.Format != "table" {
		t.Errorf("Format = %q, want table", cfg.Output.Format)
	}
	if !cfg.Session.Encrypt {
		t.Error("session encryption should default on")
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("default config should verify: %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if !filepath.IsAbs(path) {
		t.Errorf("path %q should be absolute", path)
	}
	if !strings.HasSuffix(path, filepath.Join(".cmsadmin", "cli.yaml")) {
		t.Errorf("path = %q", path)
	}
}

func TestKeyPath(t *testing.T) {
	cfg := Default()
	cfg.Session.Dir = "/tmp/cms/session"
	if got := cfg.KeyPath(); got != filepath.Join("/tmp/cms", "session.key") {
		t.Errorf("KeyPath() = %q", got)
	}
	cfg.Session.KeyFile = "/etc/cms.key"
	if got := cfg.KeyPath(); got != "/etc/cms.key" {
		t.Errorf("explicit KeyPath() = %q", got)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load should not error for a missing file: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL || cfg.Upload.Rate != DefaultUploadRate {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestSaveLoad_RoundTripWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cli.yaml")

	cfg := Default()
	cfg.API.BaseURL = "https://cms.example.com/api"
	cfg.Output.Format = "yaml"
	cfg.Output.Color = false
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	t.Setenv("CMSADMIN_OUTPUT_FORMAT", "json")
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.API.BaseURL != "https://cms.example.com/api" {
		t.Errorf("BaseURL = %q", got.API.BaseURL)
	}
	if got.Output.Format != "json" {
		t.Errorf("env should override file, Format = %q", got.Output.Format)
	}
	if got.Output.Color {
		t.Error("Color from file should be false")
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CLIConfig)
		wantErr string
	}{
		{"valid", func(*CLIConfig) {}, ""},
		{"host only base", func(c *CLIConfig) { c.API.BaseURL = "cms.example.com/api" }, ""},
		{"empty base", func(c *CLIConfig) { c.API.BaseURL = "" }, "api.base_url is required"},
		{"bad scheme", func(c *CLIConfig) { c.API.BaseURL = "ftp://x/api" }, "unsupported scheme"},
		{"bad format", func(c *CLIConfig) { c.Output.Format = "xml" }, "output.format"},
		{"bad level", func(c *CLIConfig) { c.Log.Level = "loud" }, "log.level"},
		{"bad log format", func(c *CLIConfig) { c.Log.Format = "xml" }, "log.format"},
		{"negative rate", func(c *CLIConfig) { c.Upload.Rate = -1 }, "upload.rate"},
		{"no session dir", func(c *CLIConfig) { c.Session.Dir = "" }, "session.dir"},
		{"missing ca", func(c *CLIConfig) { c.API.CAFile = "/nonexistent/ca.pem" }, "api.ca_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %v, want %q", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error should wrap ErrInvalid: %v", err)
			}
		})
	}
}

func TestVerify_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Output.Format = "xml"
	cfg.Log.Level = "loud"

	err := Verify(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "output.format") || !strings.Contains(err.Error(), "log.level") {
		t.Errorf("both problems should be reported: %v", err)
	}
}
