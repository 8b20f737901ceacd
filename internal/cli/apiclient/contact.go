package apiclient

import (
	"context"
	"net/http"

	"github.com/yndnr/cmsadmin/internal/cli/model"
)

// SubmitContact posts the public contact form. No session is required.
func (c *Client) SubmitContact(ctx context.Context, in model.ContactInput) (*model.Envelope[model.Contact], error) {
	return call[model.Contact](ctx, c, &Request{
		Method: http.MethodPost, Path: "/contact", Body: in,
		Endpoint: "contact.submit",
	})
}

func (c *Client) ListContacts(ctx context.Context, p model.ListParams) (*model.Envelope[model.ContactList], error) {
	return call[model.ContactList](ctx, c, &Request{
		Method: http.MethodGet, Path: "/contact", Query: listQuery(p), Endpoint: "contact.list",
	})
}

func (c *Client) GetContact(ctx context.Context, id string) (*model.Envelope[model.Contact], error) {
	p, err := itemPath("/contact", id)
	if err != nil {
		return nil, err
	}
	return call[model.Contact](ctx, c, &Request{
		Method: http.MethodGet, Path: p, Endpoint: "contact.get",
	})
}

func (c *Client) UpdateContact(ctx context.Context, id string, upd model.ContactUpdate) (*model.Envelope[model.Contact], error) {
	p, err := itemPath("/contact", id)
	if err != nil {
		return nil, err
	}
	return call[model.Contact](ctx, c, &Request{
		Method: http.MethodPut, Path: p, Body: upd, Endpoint: "contact.update",
	})
}

func (c *Client) DeleteContact(ctx context.Context, id string) (*model.Envelope[any], error) {
	p, err := itemPath("/contact", id)
	if err != nil {
		return nil, err
	}
	return call[any](ctx, c, &Request{
		Method: http.MethodDelete, Path: p, Endpoint: "contact.delete",
	})
}

// BulkContactAction applies action to every contact in ids.
func (c *Client) BulkContactAction(ctx context.Context, ids []string, action model.ContactBulkAction) (*model.Envelope[model.BulkResult], error) {
	return call[model.BulkResult](ctx, c, &Request{
		Method: http.MethodPost, Path: "/contact/bulk-action",
		Body:     model.BulkRequest{IDs: ids, Action: string(action)},
		Endpoint: "contact.bulk",
	})
}

func (c *Client) ContactStats(ctx context.Context) (*model.Envelope[model.Stats], error) {
	return call[model.Stats](ctx, c, &Request{
		Method: http.MethodGet, Path: "/contact/stats", Endpoint: "contact.stats",
	})
}
