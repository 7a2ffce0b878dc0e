package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig_ValidForEveryTask(t *testing.T) {
	cfg := DefaultConfig()
	for _, task := range []string{TaskAviation, TaskAnnouncement, TaskSales} {
		if err := ValidateConfig(cfg, task); err != nil {
			t.Fatalf("%s: %v", task, err)
		}
	}
}

func TestValidateConfig_Errors(t *testing.T) {
	cases := []struct {
		name   string
		task   string
		mutate func(*Config)
		want   string
	}{
		{"ftp url", TaskAviation, func(c *Config) { c.AviationURL = "ftp://example.com" }, "aviation.url"},
		{"empty url", TaskAviation, func(c *Config) { c.AviationURL = " " }, "required"},
		{"bad source", TaskAviation, func(c *Config) { c.TextSource = "pdf" }, "aviation.source"},
		{"negative", TaskAviation, func(c *Config) { c.MaxAttempts = -1 }, "negative"},
		{"bad date", TaskAnnouncement, func(c *Config) { c.FromDate = "2025-06-01" }, "dd/mm/yyyy"},
		{"reversed", TaskAnnouncement, func(c *Config) { c.FromDate, c.ToDate = "16/06/2025", "01/06/2025" }, "reversed"},
		{"no keywords", TaskAnnouncement, func(c *Config) { c.Keywords = nil }, "keywords"},
		{"no dir", TaskSales, func(c *Config) { c.DownloadDir, c.SalesDir = "", "" }, "sales.pdf or sales.dir"},
		{"bad month", TaskSales, func(c *Config) { c.SalesMonth = "Mayish" }, "sales.month"},
		{"unknown task", "weather", func(*Config) {}, "unknown task"},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		err := ValidateConfig(cfg, tc.task)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: got %v, want error containing %q", tc.name, err, tc.want)
		}
	}
}

func TestSalesDir_FallsBackToDownloadDir(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.salesDir(); got != cfg.DownloadDir {
		t.Fatalf("salesDir=%q, want %q", got, cfg.DownloadDir)
	}
	cfg.SalesDir = "reports"
	if got := cfg.salesDir(); got != "reports" {
		t.Fatalf("salesDir=%q, want reports", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" may, ,2025,sales ,")
	if diff := cmp.Diff([]string{"may", "2025", "sales"}, got); diff != "" {
		t.Fatalf("SplitList mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEnvToConfig_FillsDefaults(t *testing.T) {
	t.Setenv("AVIATION_URL", "http://env.example/")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("ANNOUNCEMENT_KEYWORDS", "june, quarterly")
	t.Setenv("HEADLESS", "false")
	t.Setenv("MIN_PDF_BYTES", "2048")
	t.Setenv("CACHE_MAX_ENTRIES", "not-a-number")

	cfg := DefaultConfig()
	ApplyEnvToConfig(&cfg)
	if cfg.AviationURL != "http://env.example/" || cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("env not applied: %q %v", cfg.AviationURL, cfg.HTTPTimeout)
	}
	if diff := cmp.Diff([]string{"june", "quarterly"}, cfg.Keywords); diff != "" {
		t.Fatalf("keywords mismatch (-want +got):\n%s", diff)
	}
	if cfg.Headless || cfg.MinPDFBytes != 2048 {
		t.Fatalf("headless=%v minBytes=%d", cfg.Headless, cfg.MinPDFBytes)
	}
	if cfg.CacheMaxEntries != 0 {
		t.Fatalf("malformed env value should be ignored, got %d", cfg.CacheMaxEntries)
	}
}

func TestApplyEnvToConfig_FlagsWin(t *testing.T) {
	t.Setenv("AVIATION_URL", "http://env.example/")
	cfg := DefaultConfig()
	cfg.AviationURL = "http://flag.example/"
	ApplyEnvToConfig(&cfg)
	if cfg.AviationURL != "http://flag.example/" {
		t.Fatalf("flag value overridden by env: %q", cfg.AviationURL)
	}
}

const sampleYAML = `
userAgent: test-agent
http:
  timeout: 45s
  maxAttempts: 4
cache:
  maxAge: 24h
aviation:
  url: https://file.example/
  rawDump: ""
  allowPartial: true
announcement:
  keywords: [annual, report]
  headless: false
  resultsTimeout: 1m
sales:
  month: Apr 2025
`

func TestLoadConfigFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statscrape.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	cfg := DefaultConfig()
	ApplyFileConfig(&cfg, fc)

	if cfg.UserAgent != "test-agent" || cfg.HTTPTimeout != 45*time.Second || cfg.MaxAttempts != 4 {
		t.Fatalf("http section not applied: %+v", cfg)
	}
	if cfg.CacheMaxAge != 24*time.Hour || cfg.AviationURL != "https://file.example/" || !cfg.AllowPartial {
		t.Fatalf("cache/aviation sections not applied: %+v", cfg)
	}
	if cfg.RawDumpPath != "" {
		t.Fatalf("explicit empty rawDump should disable the dump, got %q", cfg.RawDumpPath)
	}
	if cfg.Headless || cfg.ResultsTimeout != time.Minute || cfg.SalesMonth != "Apr 2025" {
		t.Fatalf("announcement/sales sections not applied: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"annual", "report"}, cfg.Keywords); diff != "" {
		t.Fatalf("keywords mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statscrape.json")
	body := `{"aviation": {"outDir": "exports", "source": "text"}, "sales": {"dir": "pdfs"}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	cfg := DefaultConfig()
	ApplyFileConfig(&cfg, fc)
	if cfg.OutDir != "exports" || cfg.TextSource != "text" || cfg.SalesDir != "pdfs" {
		t.Fatalf("json not applied: %+v", cfg)
	}
}

// Flags beat env, env beats the file, the file beats defaults.
func TestConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	body := "aviation:\n  url: https://file.example/\n  outDir: from-file\nsales:\n  month: Mar 2025\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("OUT_DIR", "from-env")
	t.Setenv("SALES_MONTH", "")
	t.Setenv("AVIATION_URL", "")

	cfg := DefaultConfig()
	cfg.SalesMonth = "Feb 2025" // flag
	ApplyEnvToConfig(&cfg)
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	ApplyFileConfig(&cfg, fc)

	if cfg.SalesMonth != "Feb 2025" {
		t.Fatalf("flag lost: %q", cfg.SalesMonth)
	}
	if cfg.OutDir != "from-env" {
		t.Fatalf("env lost to file: %q", cfg.OutDir)
	}
	if cfg.AviationURL != "https://file.example/" {
		t.Fatalf("file value not applied: %q", cfg.AviationURL)
	}
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("aviation: [unclosed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
