package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/cmsadmin/internal/infra/buildinfo"
)

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			env, err := getEnv(c)
			if err != nil {
				return err
			}
			return env.Printer.Print(buildinfo.Get())
		},
	}
}

// MetricsCommand prints the client metrics gathered so far in this process.
func MetricsCommand() *cli.Command {
	return &cli.Command{
		Name:  "metrics",
		Usage: "Print client metrics in Prometheus text format",
		Action: func(c *cli.Context) error {
			env, err := getEnv(c)
			if err != nil {
				return err
			}
			return env.Metrics.WriteText(env.Stdout)
		},
	}
}
