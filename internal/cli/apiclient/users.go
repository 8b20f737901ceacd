package apiclient

import (
	"context"
	"net/http"

	"github.com/yndnr/cmsadmin/internal/cli/model"
)

func (c *Client) ListUsers(ctx context.Context, p model.ListParams) (*model.Envelope[model.UserList], error) {
	return call[model.UserList](ctx, c, &Request{
		Method: http.MethodGet, Path: "/users", Query: listQuery(p), Endpoint: "users.list",
	})
}

func (c *Client) GetUser(ctx context.Context, id string) (*model.Envelope[model.Profile], error) {
	p, err := itemPath("/users", id)
	if err != nil {
		return nil, err
	}
	return call[model.Profile](ctx, c, &Request{
		Method: http.MethodGet, Path: p, Endpoint: "users.get",
	})
}

func (c *Client) CreateUser(ctx context.Context, in model.UserInput) (*model.Envelope[model.Profile], error) {
	return call[model.Profile](ctx, c, &Request{
		Method: http.MethodPost, Path: "/users", Body: in, Endpoint: "users.create",
	})
}

func (c *Client) UpdateUser(ctx context.Context, id string, in model.UserInput) (*model.Envelope[model.Profile], error) {
	p, err := itemPath("/users", id)
	if err != nil {
		return nil, err
	}
	return call[model.Profile](ctx, c, &Request{
		Method: http.MethodPut, Path: p, Body: in, Endpoint: "users.update",
	})
}

func (c *Client) DeleteUser(ctx context.Context, id string) (*model.Envelope[any], error) {
	p, err := itemPath("/users", id)
	if err != nil {
		return nil, err
	}
	return call[any](ctx, c, &Request{
		Method: http.MethodDelete, Path: p, Endpoint: "users.delete",
	})
}

// BulkUserAction applies action to every user in ids.
func (c *Client) BulkUserAction(ctx context.Context, ids []string, action model.UserBulkAction) (*model.Envelope[model.BulkResult], error) {
	return call[model.BulkResult](ctx, c, &Request{
		Method: http.MethodPost, Path: "/users/bulk-action",
		Body:     model.BulkRequest{IDs: ids, Action: string(action)},
		Endpoint: "users.bulk",
	})
}
