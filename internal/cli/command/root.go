package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cmsadmin/internal/cli/config"
	"github.com/yndnr/cmsadmin/internal/infra/buildinfo"
	"github.com/yndnr/cmsadmin/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:     "cmsadmin",
		Usage:    "Administer a CMS backend from the terminal",
		Version:  buildinfo.String(),
		Flags:    globalFlags(),
		Commands: Commands(),
		Metadata: map[string]any{},
		Before:   before,
		After:    after,
		Suggest:  true,
		// main decides how errors are printed and which exit code to use.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// Commands returns the top-level command tree.
func Commands() []*cli.Command {
	return []*cli.Command{
		LoginCommand(),
		RegisterCommand(),
		LogoutCommand(),
		WhoamiCommand(),
		VerifyCommand(),
		ProfileCommand(),
		DashboardCommand(),
		ContactCommand(),
		MediaCommand(),
		UserCommand(),
		NoticeCommand(),
		ConfigCommand(),
		VersionCommand(),
		MetricsCommand(),
		ShellCommand(),
	}
}

// globalFlags returns the global CLI flags. Values set here win over the
// environment and the config file.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.cmsadmin/cli.yaml)",
			EnvVars: []string{"CMSADMIN_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "API base URL including /api (e.g., https://cms.example.com/api)",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "Extra CA certificate (PEM) to trust",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored notifications",
		},
		&cli.StringFlag{
			Name:  "session-dir",
			Usage: "Directory holding the login session",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write client metrics in Prometheus textfile format on exit",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

func before(c *cli.Context) error {
	// The shell and tests run commands against an existing environment.
	if env, ok := c.App.Metadata[envKey].(*Env); ok {
		return env.applyOutputFlags(c)
	}

	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	applyFlags(c, cfg)

	env, err := NewEnv(cfg, path, EnvOptions{})
	if err != nil {
		return err
	}
	c.App.Metadata[envKey] = env
	c.App.Metadata[ownedKey] = true
	logger.L(c.Context).Debug("configuration loaded", "path", path, "base_url", cfg.API.BaseURL)
	return nil
}

// applyFlags overlays explicitly set global flags on cfg.
func applyFlags(c *cli.Context, cfg *config.CLIConfig) {
	if c.IsSet("base-url") {
		cfg.API.BaseURL = c.String("base-url")
	}
	if c.IsSet("ca-file") {
		cfg.API.CAFile = c.String("ca-file")
	}
	if c.IsSet("output") {
		cfg.Output.Format = c.String("output")
	}
	if c.IsSet("wide") {
		cfg.Output.Wide = c.Bool("wide")
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
	if c.IsSet("session-dir") {
		cfg.Session.Dir = c.String("session-dir")
	}
	if c.IsSet("metrics-file") {
		cfg.Metrics.File = c.String("metrics-file")
	}
	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}
}

func after(c *cli.Context) error {
	env, ok := c.App.Metadata[envKey].(*Env)
	if !ok || env.isInteractive() {
		return nil
	}
	if env.nav.Pending() {
		fmt.Fprintln(env.Stderr, "Your session has ended. Run 'cmsadmin login' to sign in again.")
		env.nav.reset()
	}
	// An Env handed in by the caller is closed by the caller.
	if owned, _ := c.App.Metadata[ownedKey].(bool); !owned {
		return nil
	}
	return env.Close()
}
