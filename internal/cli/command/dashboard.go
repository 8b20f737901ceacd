package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/cmsadmin/internal/cli/model"
)

// DashboardCommand shows the admin dashboard counters.
func DashboardCommand() *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Aliases: []string{"dash"},
		Usage:   "Show site-wide statistics",
		Action:  dashboardShow,
	}
}

func dashboardShow(c *cli.Context) error {
	env, err := authed(c)
	if err != nil {
		return err
	}

	resp, err := withSpinner(env, "Loading dashboard...", func() (*model.Envelope[model.Stats], error) {
		return env.Client.DashboardStats(c.Context)
	})
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	return env.Printer.Print(resp.Data)
}

// printStats is shared by the per-resource stats subcommands.
func printStats(env *Env, resp *model.Envelope[model.Stats], err error) error {
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	return env.Printer.Print(resp.Data)
}
