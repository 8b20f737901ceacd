package command

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yndnr/cmsadmin/internal/cli/apiclient"
	"github.com/yndnr/cmsadmin/internal/cli/model"
	"github.com/yndnr/cmsadmin/internal/cli/notify"
	"github.com/yndnr/cmsadmin/internal/cli/output"
)

// MediaCommand returns the media subcommand group.
func MediaCommand() *cli.Command {
	return &cli.Command{
		Name:    "media",
		Aliases: []string{"gallery"},
		Usage:   "Manage gallery images and videos",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List media items",
				Flags: listFlags(
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Filter by type: image, video",
					},
				),
				Action: mediaList,
			},
			{
				Name:      "get",
				Usage:     "Show one media item",
				ArgsUsage: "MEDIA_ID",
				Action:    mediaGet,
			},
			{
				Name:      "upload",
				Usage:     "Upload one or more files",
				ArgsUsage: "FILE...",
				Flags: append(metaFlags(),
					&cli.IntFlag{
						Name:    "concurrency",
						Aliases: []string{"j"},
						Value:   2,
						Usage:   "Files uploaded in parallel",
					},
				),
				Action: mediaUpload,
			},
			{
				Name:      "add-external",
				Usage:     "Register media hosted elsewhere",
				ArgsUsage: "URL",
				Flags: append(metaFlags(),
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Value:   string(model.MediaImage),
						Usage:   "Media type: image, video",
					},
				),
				Action: mediaAddExternal,
			},
			{
				Name:      "update",
				Usage:     "Edit title, description, alt text or tags",
				ArgsUsage: "MEDIA_ID",
				Flags:     metaFlags(),
				Action:    mediaUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a media item",
				ArgsUsage: "MEDIA_ID",
				Flags:     []cli.Flag{yesFlag},
				Action:    mediaDelete,
			},
			{
				Name:      "bulk-delete",
				Usage:     "Delete many media items",
				ArgsUsage: "MEDIA_ID...",
				Flags:     []cli.Flag{yesFlag},
				Action:    mediaBulkDelete,
			},
			{
				Name:   "stats",
				Usage:  "Show media statistics",
				Action: mediaStats,
			},
			{
				Name:      "url",
				Usage:     "Print the URL used to display a media item",
				ArgsUsage: "MEDIA_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Show every candidate URL",
					},
				},
				Action: mediaURL,
			},
		},
	}
}

func metaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Title"},
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Description"},
		&cli.StringFlag{Name: "alt", Usage: "Alternative text"},
		&cli.StringSliceFlag{Name: "tag", Usage: "Tag (repeatable or comma separated)"},
	}
}

func mediaMeta(c *cli.Context) model.MediaMeta {
	return model.MediaMeta{
		Title:       c.String("title"),
		Description: c.String("description"),
		AltText:     c.String("alt"),
		Tags:        c.StringSlice("tag"),
	}
}

func mediaList(c *cli.Context) error {
	env, err := authed(c)
	if err != nil {
		return err
	}

	params := listParams(c)
	if t := c.String("type"); t != "" {
		mt, err := model.ParseMediaType(t)
		if err != nil {
			return err
		}
		params.Filters["type"] = string(mt)
	}

	resp, err := withSpinner(env, "Loading media...", func() (*model.Envelope[model.MediaList], error) {
		return env.Client.ListMedia(c.Context, params)
	})
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	d := resp.Data
	return printList(env, d, d.Media, len(d.Media), d.Pagination, "media items")
}

func mediaGet(c *cli.Context) error {
	id, err := requireID(c, "media")
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}

	resp, err := env.Client.GetMedia(c.Context, id)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	return env.Printer.Print(resp.Data)
}

func mediaUpload(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return errors.New("at least one file required")
	}
	env, err := authed(c)
	if err != nil {
		return err
	}

	workers := c.Int("concurrency")
	if workers < 1 {
		workers = 1
	}
	var limiter *rate.Limiter
	if r := env.Config.Upload.Rate; r > 0 {
		limiter = rate.NewLimiter(rate.Limit(r), 1)
	}
	var bar *output.ProgressBar
	if workers == 1 && env.decorate() {
		bar = output.NewProgressBar(env.Stderr, "")
	}

	meta := mediaMeta(c)
	uploaded := make([]*model.Media, len(paths))
	errs := make([]error, len(paths))

	// A failed file does not stop the others; only an interrupt does.
	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := c.Context.Err(); err != nil {
				errs[i] = err
				return err
			}
			uploaded[i], errs[i] = uploadOne(c, env, limiter, bar, path, meta)
			return nil
		})
	}
	interrupted := g.Wait()

	var (
		done   []model.Media
		failed int
	)
	for i, err := range errs {
		if err != nil {
			failed++
			if !Silent(err) && !errors.Is(err, context.Canceled) {
				notify.Error(env.Sink, "%s: %v", filepath.Base(paths[i]), err)
			}
			continue
		}
		done = append(done, *uploaded[i])
	}

	if len(done) > 0 {
		notify.Success(env.Sink, "Uploaded %d of %d files", len(done), len(paths))
		if err := env.Printer.Print(done); err != nil {
			return err
		}
	}
	if interrupted != nil {
		return fmt.Errorf("upload interrupted after %d of %d files: %w", len(done), len(paths), interrupted)
	}
	if failed > 0 {
		return shownError{fmt.Errorf("%d of %d uploads failed", failed, len(paths))}
	}
	return nil
}

func uploadOne(c *cli.Context, env *Env, limiter *rate.Limiter, bar *output.ProgressBar, path string, meta model.MediaMeta) (*model.Media, error) {
	if limiter != nil {
		if err := limiter.Wait(c.Context); err != nil {
			return nil, err
		}
	}

	form := apiclient.NewForm()
	if err := form.FileFromPath(apiclient.MediaFileField, path); err != nil {
		return nil, err
	}
	if bar != nil {
		bar.SetTitle(filepath.Base(path))
		form.OnProgress(bar.Update)
		defer bar.Finish()
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	env.Log.Debug("uploading media", "file", path)
	resp, err := env.Client.UploadMedia(c.Context, form, meta)
	if err != nil {
		return nil, err
	}
	if err := check(env, resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func mediaAddExternal(c *cli.Context) error {
	link := strings.TrimSpace(c.Args().First())
	if link == "" {
		return errors.New("URL required")
	}
	mt, err := model.ParseMediaType(c.String("type"))
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}

	resp, err := env.Client.AddExternalMedia(c.Context, model.ExternalMedia{
		MediaMeta: mediaMeta(c),
		URL:       link,
		Type:      mt,
	})
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "External media added")
	return env.Printer.Print(resp.Data)
}

func mediaUpdate(c *cli.Context) error {
	id, err := requireID(c, "media")
	if err != nil {
		return err
	}
	meta := mediaMeta(c)
	if meta.Title == "" && meta.Description == "" && meta.AltText == "" && len(meta.Tags) == 0 {
		return errors.New("nothing to update; use --title, --description, --alt or --tag")
	}
	env, err := authed(c)
	if err != nil {
		return err
	}

	resp, err := env.Client.UpdateMedia(c.Context, id, meta)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Media updated")
	return env.Printer.Print(resp.Data)
}

func mediaDelete(c *cli.Context) error {
	id, err := requireID(c, "media")
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}
	if ok, err := confirm(c, env, "Delete media "+id+"?"); err != nil || !ok {
		return err
	}

	resp, err := env.Client.DeleteMedia(c.Context, id)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Media deleted")
	return nil
}

func mediaBulkDelete(c *cli.Context) error {
	ids, err := requireIDs(c, 0, "media")
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}
	if ok, err := confirm(c, env, fmt.Sprintf("Delete %d media items?", len(ids))); err != nil || !ok {
		return err
	}

	resp, err := env.Client.BulkDeleteMedia(c.Context, ids)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Bulk delete: %s", bulkSummary(resp.Data))
	return nil
}

func mediaStats(c *cli.Context) error {
	env, err := authed(c)
	if err != nil {
		return err
	}
	resp, err := env.Client.MediaStats(c.Context)
	return printStats(env, resp, err)
}

// mediaCandidate is one resolved URL of a media item.
type mediaCandidate struct {
	Kind string `json:"kind" yaml:"kind"`
	URL  string `json:"url" yaml:"url"`
}

func mediaURL(c *cli.Context) error {
	id, err := requireID(c, "media")
	if err != nil {
		return err
	}
	env, err := authed(c)
	if err != nil {
		return err
	}

	resp, err := env.Client.GetMedia(c.Context, id)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	m := &resp.Data

	if c.Bool("all") {
		r := env.Resolver
		return env.Printer.Print([]mediaCandidate{
			{Kind: "best", URL: r.BestImageURL(m)},
			{Kind: "thumbnail", URL: r.Resolve(m.ThumbnailURL)},
			{Kind: "file", URL: r.Resolve(m.FileURL)},
			{Kind: "external", URL: r.Resolve(m.ExternalURL)},
		})
	}

	best := env.Resolver.BestImageURL(m)
	if best == "" {
		return fmt.Errorf("media %s has no displayable URL", id)
	}
	fmt.Fprintln(env.Stdout, best)
	return nil
}
