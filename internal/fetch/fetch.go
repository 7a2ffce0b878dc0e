package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperifyio/statscrape/internal/cache"
)

// DefaultContentTypes are the media types Get accepts when AllowedContentTypes
// is empty.
var DefaultContentTypes = []string{"text/html", "application/xhtml+xml"}

// Client wraps http.Client with timeouts, bounded retry on transient errors and
// an optional revalidating disk cache.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	// Optional on-disk cache for GET bodies and validators.
	Cache *cache.HTTPCache
	// BypassCache skips conditional requests but still stores the response.
	BypassCache bool
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// AllowedContentTypes lists media type prefixes Get accepts.
	AllowedContentTypes []string
	// Header is sent with every request.
	Header http.Header

	// RetryDelay is the base backoff between attempts. Zero means 200ms.
	RetryDelay time.Duration
}

// StatusError reports a response outside the 2xx/304 range.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Transient reports whether retrying might help.
func (e *StatusError) Transient() bool { return e.Code >= 500 && e.Code <= 599 }

// Result is a fetched body and what the cache had to say about it.
type Result struct {
	Body        []byte
	ContentType string
	// CacheStatus is "miss", "revalidated" or "bypass".
	CacheStatus string
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a GET and returns body and content type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	res, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	return res.Body, res.ContentType, nil
}

// Fetch is Get with cache status reporting.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Result, error) {
	var etag, lastMod string
	status := "miss"
	if c.Cache != nil && c.BypassCache {
		status = "bypass"
	}
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}

	var resp *response
	err := c.retry(ctx, func() error {
		var err error
		resp, err = c.tryOnce(ctx, rawURL, etag, lastMod)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	if resp.status == http.StatusNotModified && c.Cache != nil {
		cached, err := c.Cache.LoadBody(ctx, rawURL)
		if err == nil {
			ct := resp.contentType
			if meta, merr := c.Cache.LoadMeta(ctx, rawURL); merr == nil && meta.ContentType != "" {
				ct = meta.ContentType
			}
			return Result{Body: cached, ContentType: ct, CacheStatus: "revalidated"}, nil
		}
		// Validators without a usable body: ask again unconditionally.
		err = c.retry(ctx, func() error {
			var err error
			resp, err = c.tryOnce(ctx, rawURL, "", "")
			return err
		})
		if err != nil {
			return Result{}, err
		}
	}
	if resp.status == http.StatusNotModified {
		return Result{}, fmt.Errorf("GET %s: 304 without a cached body", rawURL)
	}
	if c.Cache != nil && resp.status == http.StatusOK {
		_ = c.Cache.Save(ctx, rawURL, resp.contentType, resp.etag, resp.lastModified, resp.body)
	}
	return Result{Body: resp.body, ContentType: resp.contentType, CacheStatus: status}, nil
}

type response struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

func (c *Client) retry(ctx context.Context, fn func() error) error {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := c.RetryDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !isTransient(err) || i == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * delay):
		}
	}
	return err
}

func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return nil, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	return req, nil
}

func (c *Client) tryOnce(ctx context.Context, rawURL, etag, lastMod string) (*response, error) {
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &response{
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		status:       resp.StatusCode,
	}
	if resp.StatusCode == http.StatusNotModified {
		return out, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}
	if !c.allowedContentType(out.contentType) {
		return nil, fmt.Errorf("unsupported content type: %s", out.contentType)
	}
	out.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return out, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Transient()
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
		if !isHTTPScheme(req.URL) {
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

func (c *Client) allowedContentType(ct string) bool {
	allowed := c.AllowedContentTypes
	if len(allowed) == 0 {
		allowed = DefaultContentTypes
	}
	ct = strings.ToLower(strings.TrimSpace(ct))
	for _, a := range allowed {
		if a == "*" || strings.HasPrefix(ct, strings.ToLower(a)) {
			return true
		}
	}
	return false
}
