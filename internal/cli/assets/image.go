package assets

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

const (
	// FetchTimeout bounds each image request made with the default client.
	FetchTimeout = 10 * time.Second
	// MaxImageSize is the largest image body accepted.
	MaxImageSize = 10 << 20
)

// ImageState is the state of one image reference.
type ImageState int

const (
	ImageLoading ImageState = iota
	ImageFailed
	ImageRetryingFallback
	ImageLoaded
	ImageHidden
)

func (s ImageState) String() string {
	switch s {
	case ImageLoading:
		return "loading"
	case ImageFailed:
		return "failed"
	case ImageRetryingFallback:
		return "retrying-fallback"
	case ImageLoaded:
		return "loaded"
	case ImageHidden:
		return "hidden"
	default:
		return fmt.Sprintf("ImageState(%d)", int(s))
	}
}

// ImageLoad tracks loading of one image with a single fallback retry.
//
//	Loading --fail--> Failed(1) --Retry--> RetryingFallback --fail--> Hidden(2)
//	Loading|RetryingFallback --ok--> Loaded
type ImageLoad struct {
	primary  string
	fallback string
	state    ImageState
	attempt  int
}

// NewImageLoad starts loading primary; fallback is used for the one retry.
func NewImageLoad(primary, fallback string) *ImageLoad {
	return &ImageLoad{primary: primary, fallback: fallback, state: ImageLoading}
}

// State returns the current state.
func (l *ImageLoad) State() ImageState { return l.state }

// Attempts returns the number of failed loads so far.
func (l *ImageLoad) Attempts() int { return l.attempt }

// URL returns the URL to load in the current state, or "" when nothing
// should be displayed.
func (l *ImageLoad) URL() string {
	switch l.state {
	case ImageLoading:
		return l.primary
	case ImageRetryingFallback:
		return l.fallback
	case ImageLoaded:
		if l.attempt > 0 {
			return l.fallback
		}
		return l.primary
	default:
		return ""
	}
}

// Loaded records a successful load.
func (l *ImageLoad) Loaded() {
	if l.state == ImageLoading || l.state == ImageRetryingFallback {
		l.state = ImageLoaded
	}
}

// Fail records a load error. It reports whether a fallback retry is
// available; after the second failure the image is hidden for good.
func (l *ImageLoad) Fail() bool {
	switch l.state {
	case ImageLoading:
		l.attempt = 1
		if l.fallback == "" || l.fallback == l.primary {
			l.state = ImageHidden
			return false
		}
		l.state = ImageFailed
		return true
	case ImageRetryingFallback:
		l.attempt = 2
		l.state = ImageHidden
	}
	return false
}

// Retry switches to the fallback URL. Only valid once, from Failed.
func (l *ImageLoad) Retry() bool {
	if l.state != ImageFailed {
		return false
	}
	l.state = ImageRetryingFallback
	return true
}

// Done reports whether the load reached a terminal state.
func (l *ImageLoad) Done() bool {
	return l.state == ImageLoaded || l.state == ImageHidden
}

// ImageFetcher loads notice images over HTTP, driving an ImageLoad.
type ImageFetcher struct {
	client   *http.Client
	resolver *Resolver
	maxBytes int64
}

// NewImageFetcher creates a fetcher. A nil client gets a client with
// FetchTimeout.
func NewImageFetcher(client *http.Client, resolver *Resolver) *ImageFetcher {
	if client == nil {
		client = &http.Client{Timeout: FetchTimeout}
	}
	return &ImageFetcher{client: client, resolver: resolver, maxBytes: MaxImageSize}
}

// FetchNoticeImage tries the direct URL first and the proxy URL once. The
// returned ImageLoad is always terminal; body is nil unless loaded.
func (f *ImageFetcher) FetchNoticeImage(ctx context.Context, path string) (*ImageLoad, []byte, error) {
	load := NewImageLoad(f.resolver.NoticeImageURL(path), f.resolver.NoticeImageURLWithFallback(path))
	var lastErr error
	for !load.Done() {
		body, err := f.get(ctx, load.URL())
		if err == nil {
			load.Loaded()
			return load, body, nil
		}
		lastErr = err
		if load.Fail() {
			load.Retry()
		}
	}
	return load, nil, lastErr
}

func (f *ImageFetcher) get(ctx context.Context, target string) ([]byte, error) {
	if target == "" {
		return nil, fmt.Errorf("no image url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("load %s: status %d", target, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || !strings.HasPrefix(mt, "image/") {
			return nil, fmt.Errorf("load %s: not an image (%s)", target, ct)
		}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", target, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("load %s: image larger than %d bytes", target, f.maxBytes)
	}
	return body, nil
}
