package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPurgeHTTPCacheByAge(t *testing.T) {
	dir := t.TempDir()
	c := &HTTPCache{Dir: dir}
	ctx := context.Background()
	if err := c.Save(ctx, "https://old.example/", "text/html", "", "", []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := c.Save(ctx, "https://new.example/", "text/html", "", "", []byte("new")); err != nil {
		t.Fatal(err)
	}
	// Backdate the first entry.
	metaPath := filepath.Join(dir, Key("https://old.example/")+".meta.json")
	e, err := c.LoadMeta(ctx, "https://old.example/")
	if err != nil {
		t.Fatal(err)
	}
	e.SavedAt = time.Now().Add(-48 * time.Hour).UTC()
	b, _ := json.Marshal(e)
	if err := os.WriteFile(metaPath, b, 0o644); err != nil {
		t.Fatal(err)
	}

	removed, err := PurgeHTTPCacheByAge(dir, 24*time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := c.LoadBody(ctx, "https://old.example/"); err == nil {
		t.Fatalf("old body should be gone")
	}
	if _, err := c.LoadBody(ctx, "https://new.example/"); err != nil {
		t.Fatalf("new body should remain: %v", err)
	}
}

func TestPurgeHTTPCacheByAge_ZeroDisables(t *testing.T) {
	n, err := PurgeHTTPCacheByAge(t.TempDir(), 0)
	if err != nil || n != 0 {
		t.Fatalf("got %d %v", n, err)
	}
}

func TestClearDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "f"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("dir should exist: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries", len(entries))
	}
	if err := ClearDir("  "); err == nil {
		t.Fatalf("expected error for blank dir")
	}
}
