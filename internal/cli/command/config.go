package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/cmsadmin/internal/cli/config"
	"github.com/yndnr/cmsadmin/internal/cli/notify"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"cfg"},
		Usage:   "Inspect and create the CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Check the effective configuration",
				Action: configValidate,
			},
			{
				Name:  "init",
				Usage: "Write a default config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}

	values, err := configValues(env.Config)
	if err != nil {
		return err
	}
	if !env.Printer.Structured() {
		fmt.Fprintf(env.Stderr, "# %s%s\n", env.ConfigPath, missingSuffix(env.ConfigPath))
	}
	return env.Printer.Print(values)
}

// configValues converts cfg into a map keyed like the config file.
func configValues(cfg *config.CLIConfig) (map[string]any, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return values, nil
}

func missingSuffix(path string) string {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return " (not found, using defaults)"
	}
	return ""
}

func configValidate(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	if err := config.Verify(env.Config); err != nil {
		return err
	}
	notify.Success(env.Sink, "Configuration is valid")
	return nil
}

func configInit(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}

	path := env.ConfigPath
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}

	cfg := config.Default()
	cfg.API.BaseURL = env.Config.API.BaseURL
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	notify.Success(env.Sink, "Wrote %s", path)
	return nil
}

func configPath(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, env.ConfigPath)
	return nil
}
