package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/statscrape/internal/cache"
)

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "statscrape-test" {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c := &Client{UserAgent: "statscrape-test", MaxAttempts: 2, PerRequestTimeout: 2 * time.Second}
	body, ct, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct == "" || string(body) == "" {
		t.Fatalf("expected content type and body")
	}
}

func TestGet_RetryOn5xx(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(502)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 2, PerRequestTimeout: 2 * time.Second, RetryDelay: time.Millisecond}
	if _, _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestGet_NoRetryOn4xx(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 3, RetryDelay: time.Millisecond}
	_, _, err := c.Get(context.Background(), srv.URL)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("expected StatusError 404, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestGet_Conditional304_UsesCache(t *testing.T) {
	var calls int
	etag := `"abc123"`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Content-Type", "text/html; charset=windows-1252")
			w.Header().Set("ETag", etag)
			_, _ = w.Write([]byte("first"))
			return
		}
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintln(w, "unexpected")
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second, Cache: &cache.HTTPCache{Dir: t.TempDir()}}

	r1, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("first get error: %v", err)
	}
	if string(r1.Body) != "first" || r1.CacheStatus != "miss" {
		t.Fatalf("unexpected first result: %q %s", r1.Body, r1.CacheStatus)
	}

	r2, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("second get error: %v", err)
	}
	if string(r2.Body) != "first" {
		t.Fatalf("expected cached body, got %q", r2.Body)
	}
	if r2.CacheStatus != "revalidated" {
		t.Fatalf("cache status = %q", r2.CacheStatus)
	}
	if r2.ContentType != "text/html; charset=windows-1252" {
		t.Fatalf("content type should come from cache meta, got %q", r2.ContentType)
	}
}

// A 304 is only trusted when the cached body can be read back; otherwise
// the page is fetched again without validators.
func TestGet_Conditional304_MissingBodyRefetches(t *testing.T) {
	var calls, conditional int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional++
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte("page body"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := &Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second, Cache: &cache.HTTPCache{Dir: dir}}
	if _, err := c.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, cache.Key(srv.URL)+".body")); err != nil {
		t.Fatalf("remove cached body: %v", err)
	}

	r, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if string(r.Body) != "page body" || r.CacheStatus != "miss" {
		t.Fatalf("want refetched body, got %q status %q", r.Body, r.CacheStatus)
	}
	if calls != 3 || conditional != 1 {
		t.Fatalf("calls=%d conditional=%d, want 3 and 1", calls, conditional)
	}
}

// A server that answers 304 even to an unconditional request is an error,
// never an empty page.
func TestGet_Conditional304_NoBodyIsError(t *testing.T) {
	first := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if first {
			first = false
			w.Header().Set("Content-Type", "text/html")
			w.Header().Set("ETag", `"v1"`)
			_, _ = w.Write([]byte("page body"))
			return
		}
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := &Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second, Cache: &cache.HTTPCache{Dir: dir}}
	if _, err := c.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, cache.Key(srv.URL)+".body")); err != nil {
		t.Fatalf("remove cached body: %v", err)
	}
	r, err := c.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected an error, got body %q", r.Body)
	}
}

func TestGet_BypassCacheSkipsValidators(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != "" {
			t.Errorf("conditional header sent while bypassing cache")
		}
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("ETag", `"x"`)
		_, _ = w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	hc := &cache.HTTPCache{Dir: t.TempDir()}
	c := &Client{MaxAttempts: 1, Cache: hc, BypassCache: true}
	for i := 0; i < 2; i++ {
		res, err := c.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if res.CacheStatus != "bypass" {
			t.Fatalf("cache status = %q", res.CacheStatus)
		}
	}
	if _, err := hc.LoadBody(context.Background(), srv.URL); err != nil {
		t.Fatalf("bypass should still save the response: %v", err)
	}
}

func TestGet_RejectsNonHTTP(t *testing.T) {
	c := &Client{MaxAttempts: 1, PerRequestTimeout: time.Second}
	if _, _, err := c.Get(context.Background(), "file:///etc/hosts"); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
}

func TestGet_ContentTypeGating(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second}
	if _, _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for unsupported content type")
	}

	c.AllowedContentTypes = []string{"application/pdf"}
	if _, _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("allowed content type rejected: %v", err)
	}
}

func TestGet_RedirectLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/next", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second, RedirectMaxHops: 1}
	if _, _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected redirect limit error")
	}
}

func TestGet_SendsConfiguredHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept-Language"); got != "en-IN" {
			t.Errorf("Accept-Language = %q", got)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := &Client{Header: http.Header{"Accept-Language": []string{"en-IN"}}}
	if _, _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("get: %v", err)
	}
}

func TestDownload_WritesFile(t *testing.T) {
	payload := "%PDF-1.4\n" + strings.Repeat("x", 2000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") != "https://www.bseindia.com/" {
			t.Errorf("Referer = %q", r.Header.Get("Referer"))
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := &Client{Header: http.Header{
		"Accept":  []string{"application/pdf,*/*"},
		"Referer": []string{"https://www.bseindia.com/"},
	}}
	dir := filepath.Join(t.TempDir(), "downloads")
	path, err := c.Download(context.Background(), srv.URL+"/a.pdf", dir, "announcement.pdf", 1000)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if path != filepath.Join(dir, "announcement.pdf") {
		t.Fatalf("path = %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != payload {
		t.Fatalf("payload mismatch: %d bytes", len(b))
	}
}

func TestDownload_TooSmall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not found</html>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := &Client{}
	_, err := c.Download(context.Background(), srv.URL, dir, "x.pdf", 1000)
	if !errors.Is(err, ErrTooSmall) {
		t.Fatalf("expected ErrTooSmall, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no files left behind, got %d", len(entries))
	}
}

func TestDownload_RejectsPathInName(t *testing.T) {
	c := &Client{}
	if _, err := c.Download(context.Background(), "http://example.invalid/", t.TempDir(), "../x.pdf", 0); err == nil {
		t.Fatalf("expected invalid name error")
	}
}
