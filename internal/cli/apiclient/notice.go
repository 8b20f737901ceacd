package apiclient

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/yndnr/cmsadmin/internal/cli/model"
)

// NoticeImageField is the multipart field carrying a notice image.
const NoticeImageField = "image"

// GetNotice returns the current site notice. Data is nil when none is set.
func (c *Client) GetNotice(ctx context.Context) (*model.Envelope[*model.Notice], error) {
	return call[*model.Notice](ctx, c, &Request{
		Method: http.MethodGet, Path: "/notice", Endpoint: "notice.get",
	})
}

// ListNotices returns every notice, including inactive and expired ones.
func (c *Client) ListNotices(ctx context.Context, p model.ListParams) (*model.Envelope[model.NoticeList], error) {
	return call[model.NoticeList](ctx, c, &Request{
		Method: http.MethodGet, Path: "/notice/all", Query: listQuery(p), Endpoint: "notice.list",
	})
}

// CreateNotice creates a notice. When image carries a file the request is
// sent as multipart with the notice fields alongside it.
func (c *Client) CreateNotice(ctx context.Context, in model.NoticeInput, image *Form) (*model.Envelope[model.Notice], error) {
	req := &Request{Method: http.MethodPost, Path: "/notice", Endpoint: "notice.create"}
	setNoticeBody(req, in, image)
	return call[model.Notice](ctx, c, req)
}

// UpdateNotice updates a notice; see CreateNotice for the image rule.
func (c *Client) UpdateNotice(ctx context.Context, id string, in model.NoticeInput, image *Form) (*model.Envelope[model.Notice], error) {
	p, err := itemPath("/notice", id)
	if err != nil {
		return nil, err
	}
	req := &Request{Method: http.MethodPut, Path: p, Endpoint: "notice.update"}
	setNoticeBody(req, in, image)
	return call[model.Notice](ctx, c, req)
}

func (c *Client) DeleteNotice(ctx context.Context, id string) (*model.Envelope[any], error) {
	p, err := itemPath("/notice", id)
	if err != nil {
		return nil, err
	}
	return call[any](ctx, c, &Request{
		Method: http.MethodDelete, Path: p, Endpoint: "notice.delete",
	})
}

func (c *Client) NoticeStats(ctx context.Context) (*model.Envelope[model.Stats], error) {
	return call[model.Stats](ctx, c, &Request{
		Method: http.MethodGet, Path: "/notice/stats", Endpoint: "notice.stats",
	})
}

func setNoticeBody(req *Request, in model.NoticeInput, image *Form) {
	if image == nil || !image.HasFiles() {
		req.Body = in
		return
	}
	image.Field("title", in.Title).
		Field("content", in.Content).
		Field("priority", string(in.Priority)).
		Field("link", in.Link)
	if in.IsActive != nil {
		image.Field("isActive", strconv.FormatBool(*in.IsActive))
	}
	if in.ExpiresAt != nil {
		image.Field("expiresAt", in.ExpiresAt.UTC().Format(time.RFC3339))
	}
	req.Form = image
}
