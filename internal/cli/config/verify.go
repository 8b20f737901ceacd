package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Verify validates the configuration. All problems are reported together.
func Verify(cfg *CLIConfig) error {
	var errs []error
	errs = append(errs, verifyAPI(&cfg.API)...)
	errs = append(errs, verifyOutput(&cfg.Output)...)
	errs = append(errs, verifyLog(&cfg.Log)...)

	if cfg.Session.Dir == "" {
		errs = append(errs, invalid("session.dir is required"))
	}
	if cfg.Upload.Rate < 0 {
		errs = append(errs, invalid("upload.rate must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyAPI(cfg *APISection) []error {
	var errs []error
	base := cfg.BaseURL
	if base == "" {
		errs = append(errs, invalid("api.base_url is required"))
	} else {
		if !strings.Contains(base, "://") {
			base = "https://" + base
		}
		u, err := url.Parse(base)
		switch {
		case err != nil:
			errs = append(errs, invalid("api.base_url: %v", err))
		case u.Scheme != "http" && u.Scheme != "https":
			errs = append(errs, invalid("api.base_url: unsupported scheme %q", u.Scheme))
		case u.Host == "":
			errs = append(errs, invalid("api.base_url: missing host"))
		}
	}

	if cfg.CAFile != "" {
		if _, err := os.Stat(cfg.CAFile); err != nil {
			errs = append(errs, invalid("api.ca_file: %v", err))
		}
	}
	return errs
}

func verifyOutput(cfg *OutputSection) []error {
	switch cfg.Format {
	case "table", "json", "yaml":
		return nil
	default:
		return []error{invalid("output.format must be table, json or yaml, got %q", cfg.Format)}
	}
}

func verifyLog(cfg *LogSection) []error {
	var errs []error
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, invalid("log.level %q is not a level", cfg.Level))
	}
	switch cfg.Format {
	case "text", "json":
	default:
		errs = append(errs, invalid("log.format must be text or json, got %q", cfg.Format))
	}
	return errs
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}
