// Package apiclient is the authenticated client for the CMS admin REST API.
//
// Every call goes through one middleware chain. Its outermost link turns
// any failure into an *APIError, clears the session and navigates to login
// on 401, and notifies the user exactly once. Callers only decide what to
// do next; they never notify again.
package apiclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yndnr/cmsadmin/internal/cli/model"
	"github.com/yndnr/cmsadmin/internal/cli/notify"
	"github.com/yndnr/cmsadmin/internal/telemetry/logger"
)

// RequestTimeout bounds every call.
const RequestTimeout = 10 * time.Second

// Session is the view of the session store the client needs.
type Session interface {
	Token() string
	ClearReason(ctx context.Context, reason string) error
}

// Navigator moves the user to the login flow.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

// ToLogin implements Navigator.
func (f NavigatorFunc) ToLogin() { f() }

// Metrics records per-call outcomes.
type Metrics interface {
	ObserveRequest(endpoint, method, status string, d time.Duration)
}

// Options configures a Client.
type Options struct {
	// BaseURL includes the /api prefix, e.g. https://cms.example.com/api.
	BaseURL   string
	TLSConfig *tls.Config
	UserAgent string

	Session   Session
	Sink      notify.Sink
	Navigator Navigator
	Metrics   Metrics
	Logger    logger.Logger

	// Transport overrides the HTTP transport; used by tests.
	Transport http.RoundTripper
}

// Client calls the CMS API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	ua      string

	session Session
	sink    notify.Sink
	nav     Navigator
	metrics Metrics
	log     logger.Logger

	handler Handler
}

// New creates a client. The base URL is fixed for the client's lifetime.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base URL %q", opts.BaseURL)
	}

	rt := opts.Transport
	if rt == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		if opts.TLSConfig != nil {
			tr.TLSClientConfig = opts.TLSConfig
		}
		rt = tr
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: RequestTimeout, Transport: rt},
		ua:      opts.UserAgent,
		session: opts.Session,
		sink:    opts.Sink,
		nav:     opts.Navigator,
		metrics: opts.Metrics,
		log:     opts.Logger,
	}
	if c.ua == "" {
		c.ua = "cmsadmin"
	}
	if c.sink == nil {
		c.sink = notify.Discard
	}
	if c.log == nil {
		c.log = logger.Default()
	}

	c.handler = Chain(c.transport,
		c.failure,
		c.observe,
		c.requestID,
		c.auth,
	)
	return c, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// HTTPClient returns the underlying HTTP client, e.g. for asset fetches.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Do sends req through the chain and decodes a successful body into
// req.Out. Errors are always *APIError and have already been notified.
func (c *Client) Do(ctx context.Context, req *Request) error {
	_, err := c.handler(ctx, req)
	return err
}

// call is the typed form of Do used by the endpoint methods.
func call[T any](ctx context.Context, c *Client, req *Request) (*model.Envelope[T], error) {
	var out model.Envelope[T]
	req.Out = &out
	if err := c.Do(ctx, req); err != nil {
		return nil, err
	}
	return &out, nil
}

// ErrInvalidID is returned for a resource ID that cannot name one item.
var ErrInvalidID = errors.New("invalid resource ID")

// itemPath returns collection/id with id escaped as a single path segment.
func itemPath(collection, id string) (string, error) {
	if id == "" || id == "." || id == ".." {
		return "", fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return collection + "/" + url.PathEscape(id), nil
}

func (c *Client) endpointURL(p string, q url.Values) string {
	u := *c.baseURL
	raw := strings.TrimRight(u.EscapedPath(), "/") + "/" + strings.TrimLeft(p, "/")
	u.Path, u.RawPath = raw, ""
	if unescaped, err := url.PathUnescape(raw); err == nil {
		u.Path, u.RawPath = unescaped, raw
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
