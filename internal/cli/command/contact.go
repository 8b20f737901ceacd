package command

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cmsadmin/internal/cli/model"
	"github.com/yndnr/cmsadmin/internal/cli/notify"
)

// ContactCommand returns the contact subcommand group.
func ContactCommand() *cli.Command {
	return &cli.Command{
		Name:    "contact",
		Aliases: []string{"contacts"},
		Usage:   "Triage contact-form submissions",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List submissions",
				Flags: listFlags(
					&cli.StringFlag{
						Name:    "status",
						Aliases: []string{"s"},
						Usage:   "Filter by status: new, read, replied, archived",
					},
				),
				Action: contactList,
			},
			{
				Name:      "get",
				Usage:     "Show one submission",
				ArgsUsage: "CONTACT_ID",
				Action:    contactGet,
			},
			{
				Name:      "update",
				Usage:     "Change status or notes",
				ArgsUsage: "CONTACT_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "New status"},
					&cli.StringFlag{Name: "notes", Usage: "Internal notes"},
				},
				Action: contactUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a submission",
				ArgsUsage: "CONTACT_ID",
				Flags:     []cli.Flag{yesFlag},
				Action:    contactDelete,
			},
			{
				Name:      "bulk",
				Usage:     "Apply markRead, markReplied, archive or delete to many submissions",
				ArgsUsage: "ACTION CONTACT_ID...",
				Flags:     []cli.Flag{yesFlag},
				Action:    contactBulk,
			},
			{
				Name:   "stats",
				Usage:  "Show submission statistics",
				Action: contactStats,
			},
			{
				Name:  "submit",
				Usage: "Send a submission through the public contact form",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true, Usage: "Sender name"},
					&cli.StringFlag{Name: "email", Required: true, Usage: "Sender email"},
					&cli.StringFlag{Name: "phone", Usage: "Sender phone"},
					&cli.StringFlag{Name: "subject", Required: true, Usage: "Subject"},
					&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Required: true, Usage: "Message body"},
				},
				Action: contactSubmit,
			},
		},
	}
}

func contactList(c *cli.Context) error {
	env, err := authed(c)
	if err != nil {
		return err
	}

	params := listParams(c)
	if s := c.String("status"); s != "" {
		status, err := model.ParseContactStatus(s)
		if err != nil {
			return err
		}
		params.Filters["status"] = string(status)
	}

	resp, err := withSpinner(env, "Loading contacts...", func() (*model.Envelope[model.ContactList], error) {
		return env.Client.ListContacts(c.Context, params)
	})
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	d := resp.Data
	return printList(env, d, d.Contacts, len(d.Contacts), d.Pagination, "contacts")
}

func contactGet(c *cli.Context) error {
	id, err := requireID(c, "contact")
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}

	resp, err := env.Client.GetContact(c.Context, id)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	return env.Printer.Print(resp.Data)
}

func contactUpdate(c *cli.Context) error {
	id, err := requireID(c, "contact")
	if err != nil {
		return err
	}

	var upd model.ContactUpdate
	if s := c.String("status"); s != "" {
		if upd.Status, err = model.ParseContactStatus(s); err != nil {
			return err
		}
	}
	upd.Notes = c.String("notes")
	if upd == (model.ContactUpdate{}) {
		return errors.New("nothing to update; use --status or --notes")
	}

	env, err := authed(c)
	if err != nil {
		return err
	}
	resp, err := env.Client.UpdateContact(c.Context, id, upd)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Contact updated")
	return env.Printer.Print(resp.Data)
}

func contactDelete(c *cli.Context) error {
	id, err := requireID(c, "contact")
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}
	if ok, err := confirm(c, env, "Delete contact "+id+"?"); err != nil || !ok {
		return err
	}

	resp, err := env.Client.DeleteContact(c.Context, id)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Contact deleted")
	return nil
}

func contactBulk(c *cli.Context) error {
	action, err := model.ParseContactBulkAction(c.Args().First())
	if err != nil {
		return err
	}
	ids, err := requireIDs(c, 1, "contact")
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}
	if action == model.ContactDelete {
		if ok, err := confirm(c, env, "Delete these contacts?"); err != nil || !ok {
			return err
		}
	}

	resp, err := env.Client.BulkContactAction(c.Context, ids, action)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Bulk %s: %s", action, bulkSummary(resp.Data))
	return nil
}

func contactStats(c *cli.Context) error {
	env, err := authed(c)
	if err != nil {
		return err
	}
	resp, err := env.Client.ContactStats(c.Context)
	return printStats(env, resp, err)
}

// contactSubmit uses the public endpoint; no session is required.
func contactSubmit(c *cli.Context) error {
	env, err := connect(c)
	if err != nil {
		return err
	}

	resp, err := env.Client.SubmitContact(c.Context, model.ContactInput{
		Name:    c.String("name"),
		Email:   c.String("email"),
		Phone:   c.String("phone"),
		Subject: c.String("subject"),
		Message: c.String("message"),
	})
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Message sent")
	return nil
}
