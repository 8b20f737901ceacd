package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yndnr/cmsadmin/internal/cli/model"
	"github.com/yndnr/cmsadmin/internal/cli/session"
)

// ProfileData wraps a single profile in auth responses.
type ProfileData struct {
	User model.Profile `json:"user"`
}

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.Envelope[model.AuthData], error) {
	return call[model.AuthData](ctx, c, &Request{
		Method: http.MethodPost, Path: "/auth/login", Body: creds,
		Endpoint: "auth.login",
	})
}

// Register creates an account and returns its token and profile.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.Envelope[model.AuthData], error) {
	return call[model.AuthData](ctx, c, &Request{
		Method: http.MethodPost, Path: "/auth/register", Body: reg,
		Endpoint: "auth.register",
	})
}

// GetProfile fetches the current user's profile.
func (c *Client) GetProfile(ctx context.Context) (*model.Envelope[ProfileData], error) {
	return call[ProfileData](ctx, c, &Request{
		Method: http.MethodGet, Path: "/auth/profile", Endpoint: "auth.profile",
	})
}

// UpdateProfile replaces the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) (*model.Envelope[ProfileData], error) {
	return call[ProfileData](ctx, c, &Request{
		Method: http.MethodPut, Path: "/auth/profile", Body: upd, Endpoint: "auth.profile.update",
	})
}

// ChangePassword changes the current user's password.
func (c *Client) ChangePassword(ctx context.Context, pc model.PasswordChange) (*model.Envelope[any], error) {
	return call[any](ctx, c, &Request{
		Method: http.MethodPut, Path: "/auth/change-password", Body: pc, Endpoint: "auth.change_password",
	})
}

// Logout ends the session on the server.
func (c *Client) Logout(ctx context.Context) (*model.Envelope[any], error) {
	return call[any](ctx, c, &Request{
		Method: http.MethodPost, Path: "/auth/logout", Endpoint: "auth.logout",
	})
}

// VerifyToken checks the current token and returns the fresh profile.
func (c *Client) VerifyToken(ctx context.Context) (*model.Envelope[ProfileData], error) {
	return call[ProfileData](ctx, c, &Request{
		Method: http.MethodGet, Path: "/auth/verify", Endpoint: "auth.verify",
	})
}

// Verifier adapts VerifyToken for session revalidation.
func (c *Client) Verifier() session.VerifyFunc {
	return func(ctx context.Context) (session.VerifyResult, error) {
		env, err := c.VerifyToken(ctx)
		if err != nil {
			return session.VerifyResult{}, err
		}
		res := session.VerifyResult{Valid: env.Success}
		if env.Success && env.Data.User.ID != "" {
			u := env.Data.User
			res.User = &u
		}
		return res, nil
	}
}

// DashboardStats returns the admin dashboard counters.
func (c *Client) DashboardStats(ctx context.Context) (*model.Envelope[model.Stats], error) {
	return call[model.Stats](ctx, c, &Request{
		Method: http.MethodGet, Path: "/admin/dashboard", Endpoint: "admin.dashboard",
	})
}

func listQuery(p model.ListParams) url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	for k, v := range p.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}
