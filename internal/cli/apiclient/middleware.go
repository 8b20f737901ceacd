package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/cmsadmin/internal/cli/notify"
	"github.com/yndnr/cmsadmin/internal/cli/session"
	"github.com/yndnr/cmsadmin/internal/telemetry/logger"
)

// Request describes one API call.
type Request struct {
	Method string
	// Path is relative to the base URL and already escaped; see itemPath.
	Path   string
	Query  url.Values
	// Body is sent as JSON. Ignored when Form is set.
	Body any
	// Form is sent as multipart/form-data.
	Form *Form
	// Out receives the decoded 2xx body; nil discards it.
	Out any
	// Endpoint labels metrics and logs, e.g. "contact.list".
	Endpoint string

	header http.Header
}

// Header returns the request headers, allocating on first use.
func (r *Request) Header() http.Header {
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

// Response is a received HTTP response with its body read.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Handler performs a request.
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Middleware wraps a Handler.
type Middleware func(next Handler) Handler

// Chain composes middlewares around h; the first is outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// failure is the single point where errors are normalized, the session is
// cleared on 401 and the user is notified.
func (c *Client) failure(next Handler) Handler {
	return func(ctx context.Context, req *Request) (*Response, error) {
		resp, err := next(ctx, req)

		var apiErr *APIError
		switch {
		case err != nil:
			apiErr = &APIError{
				Kind:    KindNetwork,
				Message: ExtractMessage(0, nil, err),
				Cause:   err,
			}
		case !resp.OK():
			apiErr = &APIError{
				Status:  resp.Status,
				Kind:    kindForStatus(resp.Status),
				Message: ExtractMessage(resp.Status, resp.Body, nil),
				Body:    resp.Body,
			}
		case req.Out != nil && len(bytes.TrimSpace(resp.Body)) > 0:
			if derr := json.Unmarshal(resp.Body, req.Out); derr != nil {
				apiErr = &APIError{
					Status:  resp.Status,
					Kind:    KindMalformed,
					Message: GenericMessage,
					Body:    resp.Body,
					Cause:   fmt.Errorf("decode %s response: %w", req.Endpoint, derr),
				}
			}
		}
		if apiErr == nil {
			return resp, nil
		}

		l := logger.L(ctx).With("endpoint", req.Endpoint, "status", apiErr.Status, "kind", apiErr.Kind)
		if apiErr.Cause != nil {
			l.Debug("api call failed", "error", apiErr.Cause)
		} else {
			l.Debug("api call failed", "message", apiErr.Message)
		}

		if apiErr.Unauthorized() {
			if c.session != nil {
				if cerr := c.session.ClearReason(ctx, session.ReasonUnauthorized); cerr != nil {
					l.Warn("clear session after 401", "error", cerr)
				}
			}
			if c.nav != nil {
				c.nav.ToLogin()
			}
		}

		notify.Error(c.sink, "%s", apiErr.Message)
		apiErr.notified = true
		return resp, apiErr
	}
}

// observe records request count and latency.
func (c *Client) observe(next Handler) Handler {
	return func(ctx context.Context, req *Request) (*Response, error) {
		if c.metrics == nil {
			return next(ctx, req)
		}
		start := time.Now()
		resp, err := next(ctx, req)
		status := "error"
		if err == nil {
			status = strconv.Itoa(resp.Status)
		}
		c.metrics.ObserveRequest(req.Endpoint, req.Method, status, time.Since(start))
		return resp, err
	}
}

// requestID tags every request with a ULID.
func (c *Client) requestID(next Handler) Handler {
	return func(ctx context.Context, req *Request) (*Response, error) {
		id := ulid.Make().String()
		req.Header().Set("X-Request-ID", id)
		ctx = logger.WithLogger(logger.WithRequestID(ctx, id), c.log)

		logger.L(ctx).Debug("api request", "method", req.Method, "path", req.Path)
		return next(ctx, req)
	}
}

// auth attaches the bearer token when a session exists.
func (c *Client) auth(next Handler) Handler {
	return func(ctx context.Context, req *Request) (*Response, error) {
		if c.session != nil {
			if tok := c.session.Token(); tok != "" {
				req.Header().Set("Authorization", "Bearer "+tok)
			}
		}
		return next(ctx, req)
	}
}

// transport performs the HTTP exchange. Non-2xx statuses are returned as
// responses, not errors.
func (c *Client) transport(ctx context.Context, req *Request) (*Response, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		r, ct, err := req.Form.encode()
		if err != nil {
			return nil, err
		}
		body, contentType = r, ct
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, c.endpointURL(req.Path, req.Query), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range req.header {
		hreq.Header[k] = vs
	}
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("User-Agent", c.ua)
	if contentType != "" {
		hreq.Header.Set("Content-Type", contentType)
	}
	if req.Form != nil && req.Form.size > 0 {
		hreq.ContentLength = req.Form.size
	}

	resp, err := c.http.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
