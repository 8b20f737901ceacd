package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cmsadmin/internal/cli/model"
	"github.com/yndnr/cmsadmin/internal/cli/output"
)

// listFlags are shared by every list subcommand.
func listFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.IntFlag{
			Name:  "page",
			Value: 1,
			Usage: "Page number",
		},
		&cli.IntFlag{
			Name:  "limit",
			Value: 20,
			Usage: "Items per page",
		},
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"q"},
			Usage:   "Full-text search",
		},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "Sort field, prefix with - for descending (e.g., -createdAt)",
		},
	}
	return append(flags, extra...)
}

func listParams(c *cli.Context) model.ListParams {
	return model.ListParams{
		Page:    c.Int("page"),
		Limit:   c.Int("limit"),
		Search:  c.String("search"),
		Sort:    c.String("sort"),
		Filters: map[string]string{},
	}
}

var yesFlag = &cli.BoolFlag{
	Name:    "yes",
	Aliases: []string{"y"},
	Usage:   "Do not ask for confirmation",
}

func requireID(c *cli.Context, what string) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	switch id {
	case "":
		return "", fmt.Errorf("%s ID required", what)
	case ".", "..":
		return "", fmt.Errorf("invalid %s ID %q", what, id)
	}
	return id, nil
}

// requireIDs returns the arguments from index start on.
func requireIDs(c *cli.Context, start int, what string) ([]string, error) {
	args := c.Args().Slice()
	if len(args) <= start {
		return nil, fmt.Errorf("at least one %s ID required", what)
	}
	return args[start:], nil
}

// optionalBool returns nil unless the flag was given.
func optionalBool(c *cli.Context, name string) *bool {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Bool(name)
	return &v
}

// confirm asks a yes/no question unless --yes was given.
func confirm(c *cli.Context, env *Env, question string) (bool, error) {
	if c.Bool("yes") {
		return true, nil
	}
	answer, err := env.Prompter.ReadLine(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	fmt.Fprintln(env.Stderr, "Aborted.")
	return false, nil
}

// printList prints a page of items. Structured formats get the whole
// payload, pagination included.
func printList(env *Env, whole, items any, count int, p model.Pagination, noun string) error {
	if env.Printer.Structured() {
		return env.Printer.Print(whole)
	}
	if count == 0 {
		fmt.Fprintf(env.Stdout, "No %s found.\n", noun)
		return nil
	}
	if err := env.Printer.Print(items); err != nil {
		return err
	}
	if p.Pages > 0 {
		fmt.Fprintf(env.Stdout, "\nPage %d of %d (%d %s total)\n", p.Page, p.Pages, p.Total, noun)
	}
	return nil
}

// withSpinner runs fn behind a spinner when decorations are allowed.
func withSpinner[T any](env *Env, message string, fn func() (T, error)) (T, error) {
	if !env.decorate() {
		return fn()
	}
	sp := output.NewSpinner(env.Stderr, message)
	sp.Start()
	v, err := fn()
	sp.Stop()
	return v, err
}

func bulkSummary(r model.BulkResult) string {
	switch {
	case r.Deleted > 0:
		return fmt.Sprintf("%d deleted", r.Deleted)
	case r.Modified > 0 || r.Matched > 0:
		return fmt.Sprintf("%d of %d updated", r.Modified, r.Matched)
	default:
		return "nothing changed"
	}
}
