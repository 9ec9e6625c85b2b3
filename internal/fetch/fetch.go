// Package fetch downloads article pages with bounded retry, redirect and
// content-type policy, polite rate limiting and an optional revalidating disk
// cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hyperifyio/gosummarize/internal/cache"
)

var (
	// ErrInvalidURL is returned before any request for URLs that are not
	// absolute http(s) URLs with a host.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrUnsupportedContentType is returned for bodies no extractor can read.
	ErrUnsupportedContentType = errors.New("unsupported content type")
)

// StatusError reports a non-success HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Transient reports whether retrying may succeed.
func (e *StatusError) Transient() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// ValidateURL parses raw and checks that it is an absolute http or https URL
// with a host.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !isHTTPScheme(u) {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, raw)
	}
	return u, nil
}

// Client wraps http.Client and provides timeouts and limited retry on transient errors.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt.
	PerRequestTimeout time.Duration
	// Backoff is the delay before the second attempt; later attempts wait
	// proportionally longer. Zero means 200ms.
	Backoff time.Duration
	// Optional on-disk cache for HTTP GET bodies and headers.
	Cache *cache.HTTPCache
	// If true, bypass cache entirely and fetch fresh (no conditional headers),
	// but still save the latest response to cache.
	BypassCache bool

	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxConcurrent limits concurrent in-flight requests per client instance.
	// Zero means unlimited.
	MaxConcurrent int
	// Limiter, when set, is waited on before every attempt.
	Limiter *rate.Limiter
	// AllowPDF accepts application/pdf bodies.
	AllowPDF bool

	sem     chan struct{}
	semOnce sync.Once
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a GET with context, user-agent, and bounded retry for transient
// errors. It returns the body and its content type. With a cache configured,
// a 304 answer is served from the cached copy.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, "", err
	}
	target := u.String()

	var cached *cache.HTTPEntry
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, target); err == nil {
			cached = meta
		}
	}
	attempts := max(c.MaxAttempts, 1)
	var lastErr error
	for i := 0; i < attempts; i++ {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return nil, "", err
			}
		}
		res, err := c.tryOnce(ctx, target, cached)
		if err == nil {
			return c.finish(ctx, target, res)
		}
		lastErr = err
		if !isTransient(err) || ctx.Err() != nil || i == attempts-1 {
			break
		}
		if err := sleep(ctx, time.Duration(i+1)*c.backoff()); err != nil {
			return nil, "", err
		}
	}
	return nil, "", lastErr
}

type response struct {
	status       int
	body         []byte
	contentType  string
	etag         string
	lastModified string
}

func (c *Client) finish(ctx context.Context, target string, res response) ([]byte, string, error) {
	if res.status == http.StatusNotModified && c.Cache != nil {
		body, err := c.Cache.LoadBody(ctx, target)
		if err != nil {
			return nil, "", fmt.Errorf("not modified but cached body unavailable: %w", err)
		}
		ct := res.contentType
		if meta, err := c.Cache.LoadMeta(ctx, target); err == nil && meta.ContentType != "" {
			ct = meta.ContentType
		}
		return body, ct, nil
	}
	if c.Cache != nil {
		_ = c.Cache.Save(ctx, target, res.contentType, res.etag, res.lastModified, res.body)
	}
	return res.body, res.contentType, nil
}

func (c *Client) tryOnce(ctx context.Context, target string, cached *cache.HTTPEntry) (response, error) {
	if err := c.acquire(ctx); err != nil {
		return response{}, err
	}
	defer c.release()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if cached != nil {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	res := response{
		status:       resp.StatusCode,
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}
	if resp.StatusCode == http.StatusNotModified && cached != nil {
		return res, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}
	if !c.allowedContentType(res.contentType) {
		return response{}, fmt.Errorf("%w: %q", ErrUnsupportedContentType, res.contentType)
	}
	if res.body, err = io.ReadAll(resp.Body); err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}
	return res, nil
}

func (c *Client) backoff() time.Duration {
	if c.Backoff > 0 {
		return c.Backoff
	}
	return 200 * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isTransient treats 5xx, 429 and timeouts as retryable.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// allowedContentType gates bodies by media type. A missing type is accepted
// and left for the extractor to sniff.
func (c *Client) allowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	switch {
	case ct == "":
		return true
	case strings.HasPrefix(ct, "text/html"), strings.HasPrefix(ct, "application/xhtml+xml"), strings.HasPrefix(ct, "text/plain"),
		strings.HasPrefix(ct, "text/markdown"), strings.HasPrefix(ct, "text/x-markdown"):
		return true
	case strings.HasPrefix(ct, "application/pdf"):
		return c.AllowPDF
	}
	return false
}

// acquire waits for a concurrency slot or for ctx to end.
func (c *Client) acquire(ctx context.Context) error {
	if c.MaxConcurrent <= 0 {
		return nil
	}
	c.semOnce.Do(func() {
		c.sem = make(chan struct{}, c.MaxConcurrent)
	})
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.sem == nil {
		return
	}
	select {
	case <-c.sem:
	default:
	}
}
