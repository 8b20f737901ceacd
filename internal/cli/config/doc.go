// Package config defines the cmsadmin CLI configuration.
//
//   - spec.go: CLIConfig struct (~/.cmsadmin/cli.yaml) and defaults
//   - loader.go: loading through confloader, saving as YAML
//   - verify.go: validation
//
// Values are resolved from defaults, then the config file, then CMSADMIN_*
// environment variables. Command-line flags are applied by the caller.
package config
