package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	API struct {
		BaseURL string `koanf:"base_url"`
		CAFile  string `koanf:"ca_file"`
	} `koanf:"api"`
	Output struct {
		Format string `koanf:"format"`
		Wide   bool   `koanf:"wide"`
	} `koanf:"output"`
	Upload struct {
		Rate float64 `koanf:"rate"`
	} `koanf:"upload"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoader_Priority(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cli.yaml", `
api:
  base_url: https://file.example.com/api
output:
  format: json
`)
	t.Setenv("CMSADMIN_API_BASE_URL", "https://env.example.com/api")
	t.Setenv("CMSADMIN_OUTPUT_WIDE", "true")

	var cfg testConfig
	l := NewLoader(
		WithConfigFile(path, false),
		WithDefaults(map[string]any{
			"api.base_url":  "https://default.example.com/api",
			"output.format": "table",
			"upload.rate":   2.0,
		}),
	)
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://env.example.com/api" {
		t.Errorf("base_url = %q, env should win", cfg.API.BaseURL)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("format = %q, file should beat default", cfg.Output.Format)
	}
	if !cfg.Output.Wide {
		t.Error("wide should come from env")
	}
	if cfg.Upload.Rate != 2 {
		t.Errorf("rate = %v, default should apply", cfg.Upload.Rate)
	}
	if !l.Exists("api.base_url") || l.FilePath() != path {
		t.Error("loader accessors mismatch")
	}
}

func TestLoader_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	var cfg testConfig
	if err := NewLoader(WithConfigFile(missing, true)).Load(&cfg); err != nil {
		t.Errorf("optional missing file should be ignored: %v", err)
	}
	if err := NewLoader(WithConfigFile(missing, false)).Load(&cfg); err == nil {
		t.Error("required missing file should fail")
	}
}

func TestLoader_BadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "api: [unterminated")
	var cfg testConfig
	if err := NewLoader(WithConfigFile(path, true)).Load(&cfg); err == nil {
		t.Error("malformed YAML should fail even when optional")
	}
}

func TestLoader_EnvKey(t *testing.T) {
	l := NewLoader()
	tests := map[string]string{
		"CMSADMIN_API_BASE_URL":    "api.base_url",
		"CMSADMIN_SESSION_DIR":     "session.dir",
		"CMSADMIN_METRICS_FILE":    "metrics.file",
		"CMSADMIN_OUTPUT_FORMAT":   "output.format",
		"CMSADMIN_SESSION_ENCRYPT": "session.encrypt",
	}
	for in, want := range tests {
		if got := l.EnvKey(in); got != want {
			t.Errorf("EnvKey(%q) = %q, want %q", in, got, want)
		}
	}

	custom := NewLoader(WithEnvPrefix("CMS_"))
	if got := custom.EnvKey("CMS_LOG_LEVEL"); got != "log.level" {
		t.Errorf("custom prefix EnvKey = %q", got)
	}
}

func TestWatcher_NotifiesOnWatchedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cli.yaml", "output:\n  format: table\n")

	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	changed := make(chan string, 8)
	w.OnChange(func(p string) { changed <- p })
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	w.StartAsync()

	// Unrelated files in the same directory are ignored.
	writeFile(t, dir, "other.yaml", "x: 1\n")
	writeFile(t, dir, "cli.yaml", "output:\n  format: json\n")

	select {
	case p := <-changed:
		if filepath.Base(p) != "cli.yaml" {
			t.Errorf("changed = %q", p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
