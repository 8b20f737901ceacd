package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cmsadmin/internal/cli/model"
	"github.com/yndnr/cmsadmin/internal/cli/notify"
)

// UserCommand returns the user subcommand group.
func UserCommand() *cli.Command {
	return &cli.Command{
		Name:    "user",
		Aliases: []string{"users"},
		Usage:   "Manage user accounts (admin only)",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List users",
				Flags: listFlags(
					&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Usage: "Filter by role: user, admin"},
					&cli.BoolFlag{Name: "active", Usage: "Filter by active state (--active=false for disabled)"},
				),
				Action: userList,
			},
			{
				Name:      "get",
				Usage:     "Show one user",
				ArgsUsage: "USER_ID",
				Action:    userGet,
			},
			{
				Name:  "create",
				Usage: "Create a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Display name"},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true, Usage: "Email"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Initial password (prompted when omitted)"},
					&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Value: string(model.RoleUser), Usage: "Role: user, admin"},
					&cli.BoolFlag{Name: "active", Value: true, Usage: "Create the account enabled"},
				},
				Action: userCreate,
			},
			{
				Name:      "update",
				Usage:     "Edit a user",
				ArgsUsage: "USER_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name"},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "New password"},
					&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Usage: "Role: user, admin"},
					&cli.BoolFlag{Name: "active", Usage: "Enable or disable (--active=false)"},
				},
				Action: userUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a user",
				ArgsUsage: "USER_ID",
				Flags:     []cli.Flag{yesFlag},
				Action:    userDelete,
			},
			{
				Name:      "bulk",
				Usage:     "Apply activate, deactivate or delete to many users",
				ArgsUsage: "ACTION USER_ID...",
				Flags:     []cli.Flag{yesFlag},
				Action:    userBulk,
			},
		},
	}
}

func userList(c *cli.Context) error {
	env, err := authed(c)
	if err != nil {
		return err
	}

	params := listParams(c)
	if r := c.String("role"); r != "" {
		role, err := model.ParseRole(r)
		if err != nil {
			return err
		}
		params.Filters["role"] = string(role)
	}
	if active := optionalBool(c, "active"); active != nil {
		params.Filters["isActive"] = fmt.Sprint(*active)
	}

	resp, err := withSpinner(env, "Loading users...", func() (*model.Envelope[model.UserList], error) {
		return env.Client.ListUsers(c.Context, params)
	})
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	d := resp.Data
	return printList(env, d, d.Users, len(d.Users), d.Pagination, "users")
}

func userGet(c *cli.Context) error {
	id, err := requireID(c, "user")
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}

	resp, err := env.Client.GetUser(c.Context, id)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	return env.Printer.Print(resp.Data)
}

func userCreate(c *cli.Context) error {
	role, err := model.ParseRole(c.String("role"))
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}

	password := c.String("password")
	if password == "" {
		if password, err = newPassword(env.Prompter, "Password: "); err != nil {
			return err
		}
	}
	active := c.Bool("active")

	resp, err := env.Client.CreateUser(c.Context, model.UserInput{
		Name:     c.String("name"),
		Email:    c.String("email"),
		Password: password,
		Role:     role,
		IsActive: &active,
	})
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "User %s created", resp.Data.Email)
	return env.Printer.Print(resp.Data)
}

func userUpdate(c *cli.Context) error {
	id, err := requireID(c, "user")
	if err != nil {
		return err
	}

	in := model.UserInput{
		Name:     c.String("name"),
		Email:    c.String("email"),
		Password: c.String("password"),
		IsActive: optionalBool(c, "active"),
	}
	if r := c.String("role"); r != "" {
		if in.Role, err = model.ParseRole(r); err != nil {
			return err
		}
	}
	if in.Name == "" && in.Email == "" && in.Password == "" && in.Role == "" && in.IsActive == nil {
		return errors.New("nothing to update; use --name, --email, --password, --role or --active")
	}

	env, err := authed(c)
	if err != nil {
		return err
	}
	resp, err := env.Client.UpdateUser(c.Context, id, in)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}

	// Editing yourself refreshes the cached profile.
	if me := env.Store.User(); me != nil && me.ID == resp.Data.ID {
		if err := env.Store.Update(c.Context, resp.Data); err != nil {
			return err
		}
	}
	notify.Success(env.Sink, "User updated")
	return env.Printer.Print(resp.Data)
}

func userDelete(c *cli.Context) error {
	id, err := requireID(c, "user")
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}
	if ok, err := confirm(c, env, "Delete user "+id+"?"); err != nil || !ok {
		return err
	}

	resp, err := env.Client.DeleteUser(c.Context, id)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "User deleted")
	return nil
}

func userBulk(c *cli.Context) error {
	action, err := model.ParseUserBulkAction(c.Args().First())
	if err != nil {
		return err
	}
	ids, err := requireIDs(c, 1, "user")
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}
	if action == model.UserDelete {
		if ok, err := confirm(c, env, fmt.Sprintf("Delete %d users?", len(ids))); err != nil || !ok {
			return err
		}
	}

	resp, err := env.Client.BulkUserAction(c.Context, ids, action)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Bulk %s: %s", action, bulkSummary(resp.Data))
	return nil
}
