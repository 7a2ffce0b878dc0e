package app

import (
	"bytes"
	"context"
	"testing"
	"time"
)

const allFieldsPage = `<html><body>
<h2>Today's traffic</h2>
<p>Departing flights: 1,234</p>
<p>Departing Pax: 1,23,456</p>
<p>Arriving flights: 2,345</p>
<p>Arriving Pax: 2,34,567</p>
<p>Aircraft movements: 4,321</p>
<p>Airport footfalls: 4,56,789</p>
</body></html>`

var testNow = time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)

// newTestApp builds an App with a private cache, a fixed clock and captured
// output.
func newTestApp(t *testing.T, cfg Config) (*App, *bytes.Buffer) {
	t.Helper()
	if cfg.CacheDir == DefaultConfig().CacheDir {
		cfg.CacheDir = t.TempDir()
	}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)
	var out bytes.Buffer
	a.SetOutput(&out)
	a.now = func() time.Time { return testNow }
	a.settle = 0
	return a, &out
}
