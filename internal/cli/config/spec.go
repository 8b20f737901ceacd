package config

import (
	"os"
	"path/filepath"
)

// Default configuration values.
const (
	DefaultBaseURL      = "http://localhost:5000/api"
	DefaultOutputFormat = "table"
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
	DefaultUploadRate   = 2.0
)

// CLIConfig is the configuration for cmsadmin.
type CLIConfig struct {
	API     APISection     `koanf:"api" yaml:"api"`
	Output  OutputSection  `koanf:"output" yaml:"output"`
	Session SessionSection `koanf:"session" yaml:"session"`
	Log     LogSection     `koanf:"log" yaml:"log"`
	Upload  UploadSection  `koanf:"upload" yaml:"upload"`
	Metrics MetricsSection `koanf:"metrics" yaml:"metrics"`
}

// APISection configures the backend connection.
type APISection struct {
	BaseURL string `koanf:"base_url" yaml:"base_url"`
	CAFile  string `koanf:"ca_file" yaml:"ca_file,omitempty"`
}

// OutputSection configures result rendering.
type OutputSection struct {
	Format string `koanf:"format" yaml:"format"` // table, json, yaml
	Wide   bool   `koanf:"wide" yaml:"wide"`
	Color  bool   `koanf:"color" yaml:"color"`
}

// SessionSection configures where the login session is kept.
type SessionSection struct {
	Dir     string `koanf:"dir" yaml:"dir"`
	Encrypt bool   `koanf:"encrypt" yaml:"encrypt"`
	KeyFile string `koanf:"key_file" yaml:"key_file,omitempty"`
}

// LogSection configures diagnostic logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// UploadSection configures media uploads.
type UploadSection struct {
	// Rate is the number of files started per second; 0 disables pacing.
	Rate float64 `koanf:"rate" yaml:"rate"`
}

// MetricsSection configures the Prometheus textfile written on exit.
type MetricsSection struct {
	File string `koanf:"file" yaml:"file,omitempty"`
}

// HomeDir returns ~/.cmsadmin.
func HomeDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".cmsadmin")
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), "cli.yaml")
}

// DefaultHistoryPath returns the shell history file path.
func DefaultHistoryPath() string {
	return filepath.Join(HomeDir(), "history")
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		API: APISection{
			BaseURL: DefaultBaseURL,
		},
		Output: OutputSection{
			Format: DefaultOutputFormat,
			Color:  true,
		},
		Session: SessionSection{
			Dir:     filepath.Join(HomeDir(), "session"),
			Encrypt: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Upload: UploadSection{
			Rate: DefaultUploadRate,
		},
	}
}

// KeyPath returns the session key file, defaulting to session.key next to
// the session directory.
func (c *CLIConfig) KeyPath() string {
	if c.Session.KeyFile != "" {
		return c.Session.KeyFile
	}
	return filepath.Join(filepath.Dir(filepath.Clean(c.Session.Dir)), "session.key")
}

func defaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"api.base_url":     d.API.BaseURL,
		"api.ca_file":      d.API.CAFile,
		"output.format":    d.Output.Format,
		"output.wide":      d.Output.Wide,
		"output.color":     d.Output.Color,
		"session.dir":      d.Session.Dir,
		"session.encrypt":  d.Session.Encrypt,
		"session.key_file": d.Session.KeyFile,
		"log.level":        d.Log.Level,
		"log.format":       d.Log.Format,
		"upload.rate":      d.Upload.Rate,
		"metrics.file":     d.Metrics.File,
	}
}
