// Package assets turns backend-relative asset references into fetchable URLs.
package assets

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/yndnr/cmsadmin/internal/cli/model"
)

// NoticeImagePath is the backend proxy endpoint for notice images.
const NoticeImagePath = "/api/notice/image"

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// IsAbsolute reports whether s is an absolute http(s) URL.
func IsAbsolute(s string) bool {
	return absoluteURL.MatchString(s)
}

// Resolver resolves asset paths against a fixed API base.
type Resolver struct {
	base   string
	origin string // scheme://host, empty when base did not parse
}

// NewResolver creates a resolver for the given API base URL
// (e.g. https://cms.example.com/api).
func NewResolver(apiBase string) *Resolver {
	r := &Resolver{base: apiBase}
	if u, err := url.Parse(apiBase); err == nil && u.Scheme != "" && u.Host != "" {
		r.origin = u.Scheme + "://" + u.Host
	}
	return r
}

// Origin returns the scheme and host derived from the base, or the
// string-trimmed base when it could not be parsed.
func (r *Resolver) Origin() string {
	if r.origin != "" {
		return r.origin
	}
	return trimBase(r.base)
}

// Resolve returns an absolute URL for path. Absolute inputs are returned
// unchanged; the join never produces a doubled slash.
func (r *Resolver) Resolve(path string) string {
	if path == "" {
		return ""
	}
	if IsAbsolute(path) {
		return path
	}
	return join(r.Origin(), path)
}

// BestImageURL picks the thumbnail, then the file, then the external URL.
// The external URL is assumed absolute and returned verbatim.
func (r *Resolver) BestImageURL(ref model.MediaRef) string {
	if ref == nil {
		return ""
	}
	if t := ref.ThumbnailRef(); t != "" {
		return r.Resolve(t)
	}
	if f := ref.FileRef(); f != "" {
		return r.Resolve(f)
	}
	return ref.ExternalRef()
}

// NoticeImageURL resolves a notice image by direct origin join.
func (r *Resolver) NoticeImageURL(path string) string {
	return r.Resolve(path)
}

// NoticeImageURLWithFallback routes a relative notice image through the
// backend image proxy. Absolute inputs are returned unchanged.
func (r *Resolver) NoticeImageURLWithFallback(path string) string {
	if path == "" {
		return ""
	}
	if IsAbsolute(path) {
		return path
	}
	return join(r.Origin(), NoticeImagePath) + "?path=" + encodeComponent(path)
}

// trimBase strips trailing slashes and a trailing /api segment.
func trimBase(base string) string {
	base = strings.TrimRight(base, "/")
	base = strings.TrimSuffix(base, "/api")
	return strings.TrimRight(base, "/")
}

func join(origin, path string) string {
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(path, "/")
}

// encodeComponent escapes s the way a URI component is escaped: spaces
// become %20 rather than '+'.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
