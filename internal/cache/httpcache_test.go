package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHTTPCache_SaveLoad(t *testing.T) {
	c := &HTTPCache{Dir: filepath.Join(t.TempDir(), "http")}
	ctx := context.Background()
	url := "https://www.civilaviation.gov.in/"
	if err := c.Save(ctx, url, "text/html", `"v1"`, "Mon, 02 Jun 2025 10:00:00 GMT", []byte("page")); err != nil {
		t.Fatalf("save: %v", err)
	}
	meta, err := c.LoadMeta(ctx, url)
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	if meta.URL != url || meta.ETag != `"v1"` || meta.Size != 4 || meta.SavedAt.IsZero() {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	body, err := c.LoadBody(ctx, url)
	if err != nil || string(body) != "page" {
		t.Fatalf("load body: %q %v", body, err)
	}
	if _, err := c.LoadBody(ctx, "https://other.example/"); err == nil {
		t.Fatalf("expected miss for unknown url")
	}
}

func TestHTTPCache_RequiresDir(t *testing.T) {
	c := &HTTPCache{}
	if err := c.Save(context.Background(), "u", "", "", "", nil); err == nil {
		t.Fatalf("expected error without dir")
	}
}

func TestHTTPCache_LRUEnforcement_Count(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := &HTTPCache{Dir: dir}
	urls := []string{"https://a.com/1", "https://a.com/2", "https://a.com/3"}
	for i, u := range urls {
		if err := c.Save(context.Background(), u, "text/html", "", "", []byte(fmt.Sprintf("body-%d", i))); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := c.LoadBody(context.Background(), urls[0]); err != nil {
		t.Fatalf("touch body: %v", err)
	}
	removed, err := EnforceHTTPCacheLimits(dir, 0, 2)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := c.LoadBody(context.Background(), urls[1]); err == nil {
		t.Fatalf("expected least recently used entry evicted")
	}
	if _, err := c.LoadBody(context.Background(), urls[0]); err != nil {
		t.Fatalf("touched entry should survive: %v", err)
	}
}

func TestHTTPCache_LRUEnforcement_Bytes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := &HTTPCache{Dir: dir}
	if err := c.Save(context.Background(), "https://b.com/1", "text/html", "", "", []byte("1111111111")); err != nil {
		t.Fatalf("save 1: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := c.Save(context.Background(), "https://b.com/2", "text/html", "", "", []byte("22")); err != nil {
		t.Fatalf("save 2: %v", err)
	}
	removed, err := EnforceHTTPCacheLimits(dir, 5, 0)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, Key("https://b.com/2")+".body")); err != nil {
		t.Fatalf("small newer entry should remain: %v", err)
	}
}
