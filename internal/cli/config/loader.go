package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/cmsadmin/internal/infra/confloader"
)

// Load resolves the configuration from defaults, the file at path (optional,
// DefaultConfigPath when empty) and CMSADMIN_* environment variables.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := &CLIConfig{}
	l := confloader.NewLoader(
		confloader.WithConfigFile(path, true),
		confloader.WithDefaults(defaultValues()),
	)
	if err := l.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML with 0600 permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
