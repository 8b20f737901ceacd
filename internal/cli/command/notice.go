package command

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/cmsadmin/internal/cli/apiclient"
	"github.com/yndnr/cmsadmin/internal/cli/assets"
	"github.com/yndnr/cmsadmin/internal/cli/model"
	"github.com/yndnr/cmsadmin/internal/cli/notify"
)

// NoticeCommand returns the notice subcommand group.
func NoticeCommand() *cli.Command {
	return &cli.Command{
		Name:    "notice",
		Aliases: []string{"notices"},
		Usage:   "Manage the site-wide notice banner",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the notice visitors currently see",
				Action: noticeShow,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List every notice, including inactive and expired ones",
				Flags:   listFlags(),
				Action:  noticeList,
			},
			{
				Name:  "create",
				Usage: "Create a notice",
				Flags: append(noticeFlags(),
					&cli.BoolFlag{Name: "active", Value: true, Usage: "Publish immediately"},
				),
				Action: noticeCreate,
			},
			{
				Name:      "update",
				Usage:     "Edit a notice",
				ArgsUsage: "NOTICE_ID",
				Flags: append(noticeFlags(),
					&cli.BoolFlag{Name: "active", Usage: "Publish or hide (--active=false)"},
				),
				Action: noticeUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a notice",
				ArgsUsage: "NOTICE_ID",
				Flags:     []cli.Flag{yesFlag},
				Action:    noticeDelete,
			},
			{
				Name:   "stats",
				Usage:  "Show notice statistics",
				Action: noticeStats,
			},
			{
				Name:      "image",
				Usage:     "Fetch a notice image, falling back to the image proxy",
				ArgsUsage: "[IMAGE_PATH]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"O"},
						Usage:   "Write the image to this file",
					},
				},
				Action: noticeImage,
			},
		},
	}
}

func noticeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Title"},
		&cli.StringFlag{Name: "content", Usage: "Body text"},
		&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Priority: low, medium, high, urgent"},
		&cli.StringFlag{Name: "expires", Usage: "Expiry as a duration (72h, 7d), a date (2006-01-02) or RFC 3339"},
		&cli.StringFlag{Name: "link", Usage: "Link target"},
		&cli.PathFlag{Name: "image", Usage: "Image file to attach"},
	}
}

func noticeShow(c *cli.Context) error {
	env, err := connect(c)
	if err != nil {
		return err
	}

	resp, err := env.Client.GetNotice(c.Context)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}

	n := resp.Data
	now := time.Now()
	if !n.Visible(now) {
		if env.Printer.Structured() {
			return env.Printer.Print(n)
		}
		fmt.Fprintln(env.Stdout, "No notice is currently shown.")
		if n != nil {
			fmt.Fprintf(env.Stdout, "Latest notice %q is %s.\n", n.Title, noticeState(n, now))
		}
		return nil
	}

	if err := env.Printer.Print(n); err != nil {
		return err
	}
	if !env.Printer.Structured() {
		fmt.Fprintln(env.Stdout)
		fmt.Fprintf(env.Stdout, "Status: %s\n", noticeState(n, now))
		if n.ImageURL != "" {
			fmt.Fprintf(env.Stdout, "Image:  %s\n", env.Resolver.NoticeImageURL(n.ImageURL))
		}
	}
	return nil
}

// noticeState describes visibility in words.
func noticeState(n *model.Notice, now time.Time) string {
	switch {
	case !n.IsActive:
		return "inactive"
	case n.Expired(now):
		return "expired " + humanize.RelTime(*n.ExpiresAt, now, "ago", "from now")
	case n.ExpiresAt != nil:
		return "visible, expires " + humanize.RelTime(*n.ExpiresAt, now, "ago", "from now")
	default:
		return "visible"
	}
}

func noticeList(c *cli.Context) error {
	env, err := authed(c)
	if err != nil {
		return err
	}

	resp, err := withSpinner(env, "Loading notices...", func() (*model.Envelope[model.NoticeList], error) {
		return env.Client.ListNotices(c.Context, listParams(c))
	})
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	d := resp.Data
	return printList(env, d, d.Notices, len(d.Notices), d.Pagination, "notices")
}

// noticeInput reads the shared create/update flags.
func noticeInput(c *cli.Context, now time.Time) (model.NoticeInput, *apiclient.Form, error) {
	in := model.NoticeInput{
		Title:    c.String("title"),
		Content:  c.String("content"),
		Link:     c.String("link"),
		IsActive: optionalBool(c, "active"),
	}
	if p := c.String("priority"); p != "" {
		pr, err := model.ParsePriority(p)
		if err != nil {
			return in, nil, err
		}
		in.Priority = pr
	}
	if s := c.String("expires"); s != "" {
		t, err := parseExpiry(s, now)
		if err != nil {
			return in, nil, err
		}
		in.ExpiresAt = &t
	}

	var image *apiclient.Form
	if path := c.Path("image"); path != "" {
		image = apiclient.NewForm()
		if err := image.FileFromPath(apiclient.NoticeImageField, path); err != nil {
			return in, nil, err
		}
	}
	return in, image, nil
}

// parseExpiry accepts a duration from now (with a d suffix for days), a
// local date or date-time, or RFC 3339. The result must lie in the future.
func parseExpiry(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	var t time.Time

	if days, ok := strings.CutSuffix(s, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil {
			t = now.AddDate(0, 0, n)
		}
	}
	if t.IsZero() {
		if d, err := time.ParseDuration(s); err == nil {
			t = now.Add(d)
		}
	}
	if t.IsZero() {
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
			if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				t = parsed
				break
			}
		}
	}

	if t.IsZero() {
		return t, fmt.Errorf("invalid expiry %q", s)
	}
	if !t.After(now) {
		return t, fmt.Errorf("expiry %q is not in the future", s)
	}
	return t, nil
}

func noticeCreate(c *cli.Context) error {
	in, image, err := noticeInput(c, time.Now())
	if err != nil {
		return err
	}
	if in.Title == "" || in.Content == "" {
		return errors.New("--title and --content are required")
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	active := c.Bool("active")
	in.IsActive = &active

	env, err := authed(c)
	if err != nil {
		return err
	}
	resp, err := env.Client.CreateNotice(c.Context, in, image)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Notice created")
	return env.Printer.Print(resp.Data)
}

func noticeUpdate(c *cli.Context) error {
	id, err := requireID(c, "notice")
	if err != nil {
		return err
	}
	in, image, err := noticeInput(c, time.Now())
	if err != nil {
		return err
	}
	if in == (model.NoticeInput{}) && image == nil {
		return errors.New("nothing to update")
	}

	env, err := authed(c)
	if err != nil {
		return err
	}
	resp, err := env.Client.UpdateNotice(c.Context, id, in, image)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Notice updated")
	return env.Printer.Print(resp.Data)
}

func noticeDelete(c *cli.Context) error {
	id, err := requireID(c, "notice")
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}
	if ok, err := confirm(c, env, "Delete notice "+id+"?"); err != nil || !ok {
		return err
	}

	resp, err := env.Client.DeleteNotice(c.Context, id)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Notice deleted")
	return nil
}

func noticeStats(c *cli.Context) error {
	env, err := authed(c)
	if err != nil {
		return err
	}
	resp, err := env.Client.NoticeStats(c.Context)
	return printStats(env, resp, err)
}

// imageResult reports how a notice image was loaded.
type imageResult struct {
	State    string `json:"state" yaml:"state"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Attempts int    `json:"failedAttempts" yaml:"failed_attempts"`
	Bytes    string `json:"size,omitempty" yaml:"size,omitempty"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
}

func noticeImage(c *cli.Context) error {
	env, err := connect(c)
	if err != nil {
		return err
	}

	path := c.Args().First()
	if path == "" {
		resp, err := env.Client.GetNotice(c.Context)
		if err != nil {
			return err
		}
		if err := check(env, resp); err != nil {
			return err
		}
		if resp.Data == nil || resp.Data.ImageURL == "" {
			return errors.New("the current notice has no image")
		}
		path = resp.Data.ImageURL
	}

	fetcher := assets.NewImageFetcher(env.Client.HTTPClient(), env.Resolver)
	load, body, fetchErr := fetcher.FetchNoticeImage(c.Context, path)

	res := imageResult{State: load.State().String(), URL: load.URL(), Attempts: load.Attempts()}
	if fetchErr != nil {
		env.Log.Debug("notice image unavailable", "path", path, "error", fetchErr)
		notify.Warning(env.Sink, "Image could not be loaded and is hidden")
		if err := env.Printer.Print(res); err != nil {
			return err
		}
		return shownError{fmt.Errorf("load image %s: %w", path, fetchErr)}
	}

	res.Bytes = humanize.Bytes(uint64(len(body)))
	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, body, 0o644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		res.File = out
	}
	return env.Printer.Print(res)
}
