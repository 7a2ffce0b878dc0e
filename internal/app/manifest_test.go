package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperifyio/statscrape/internal/stats"
)

func TestBuildManifest_RecordsTiersAndDigest(t *testing.T) {
	res := stats.Extract("Departing flights: 1,234\nArriving flights: 2,345")
	now := time.Date(2025, 6, 16, 10, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	m := buildManifest("https://example.com/", "miss", "text/html", "raw", "hello", res, now)

	if m.TextSHA256 != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Fatalf("unexpected digest %s", m.TextSHA256)
	}
	if m.TextChars != 5 || m.Resolved != 2 || m.Complete {
		t.Fatalf("unexpected counts: %+v", m)
	}
	if !m.GeneratedAt.Equal(now) || m.GeneratedAt.Location() != time.UTC {
		t.Fatalf("GeneratedAt should be UTC, got %v", m.GeneratedAt)
	}
	if len(m.Fields) != len(stats.Fields) {
		t.Fatalf("want one entry per field, got %d", len(m.Fields))
	}
	first := m.Fields[0]
	if first.Key != string(stats.DepartingFlights) || first.Value == nil || *first.Value != 1234 || first.Tier != stats.TierLabeled.String() {
		t.Fatalf("unexpected first field: %+v", first)
	}
	for _, f := range m.Fields {
		if f.Key == string(stats.AirportFootfalls) && (f.Value != nil || f.Tier != "") {
			t.Fatalf("unresolved field should have no value or tier: %+v", f)
		}
	}
}

func TestWriteManifest_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.manifest.json")
	res := stats.Extract(allFieldsPage)
	m := buildManifest("https://example.com/", "revalidated", "text/html", "text", "body", res, time.Unix(0, 0))
	if err := writeManifest(path, m); err != nil {
		t.Fatalf("writeManifest: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got manifest
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestManifestSidecarPath(t *testing.T) {
	cases := map[string]string{
		"out/aviation.csv":  "out/aviation.manifest.json",
		"out/aviation.xlsx": "out/aviation.manifest.json",
		"out/aviation":      "out/aviation.manifest.json",
	}
	for in, want := range cases {
		if got := manifestSidecarPath(in); got != want {
			t.Fatalf("manifestSidecarPath(%q)=%q, want %q", in, got, want)
		}
	}
}
