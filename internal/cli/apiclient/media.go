package apiclient

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/yndnr/cmsadmin/internal/cli/model"
)

// MediaFileField is the multipart field carrying the uploaded file.
const MediaFileField = "file"

func (c *Client) ListMedia(ctx context.Context, p model.ListParams) (*model.Envelope[model.MediaList], error) {
	return call[model.MediaList](ctx, c, &Request{
		Method: http.MethodGet, Path: "/media", Query: listQuery(p), Endpoint: "media.list",
	})
}

func (c *Client) GetMedia(ctx context.Context, id string) (*model.Envelope[model.Media], error) {
	p, err := itemPath("/media", id)
	if err != nil {
		return nil, err
	}
	return call[model.Media](ctx, c, &Request{
		Method: http.MethodGet, Path: p, Endpoint: "media.get",
	})
}

// UploadMedia sends one file with its metadata. form must carry the file
// part; metadata fields are appended here.
func (c *Client) UploadMedia(ctx context.Context, form *Form, meta model.MediaMeta) (*model.Envelope[model.Media], error) {
	if form == nil || !form.HasFiles() {
		return nil, errors.New("apiclient: upload needs a file")
	}
	form.Field("title", meta.Title).
		Field("description", meta.Description).
		Field("altText", meta.AltText).
		Field("tags", strings.Join(meta.Tags, ","))
	return call[model.Media](ctx, c, &Request{
		Method: http.MethodPost, Path: "/media/upload", Form: form, Endpoint: "media.upload",
	})
}

// AddExternalMedia registers a media item hosted elsewhere.
func (c *Client) AddExternalMedia(ctx context.Context, in model.ExternalMedia) (*model.Envelope[model.Media], error) {
	return call[model.Media](ctx, c, &Request{
		Method: http.MethodPost, Path: "/media/external", Body: in, Endpoint: "media.external",
	})
}

func (c *Client) UpdateMedia(ctx context.Context, id string, meta model.MediaMeta) (*model.Envelope[model.Media], error) {
	p, err := itemPath("/media", id)
	if err != nil {
		return nil, err
	}
	return call[model.Media](ctx, c, &Request{
		Method: http.MethodPut, Path: p, Body: meta, Endpoint: "media.update",
	})
}

func (c *Client) DeleteMedia(ctx context.Context, id string) (*model.Envelope[any], error) {
	p, err := itemPath("/media", id)
	if err != nil {
		return nil, err
	}
	return call[any](ctx, c, &Request{
		Method: http.MethodDelete, Path: p, Endpoint: "media.delete",
	})
}

func (c *Client) BulkDeleteMedia(ctx context.Context, ids []string) (*model.Envelope[model.BulkResult], error) {
	return call[model.BulkResult](ctx, c, &Request{
		Method: http.MethodPost, Path: "/media/bulk-delete",
		Body: model.BulkRequest{IDs: ids}, Endpoint: "media.bulk_delete",
	})
}

func (c *Client) MediaStats(ctx context.Context) (*model.Envelope[model.Stats], error) {
	return call[model.Stats](ctx, c, &Request{
		Method: http.MethodGet, Path: "/media/stats", Endpoint: "media.stats",
	})
}
