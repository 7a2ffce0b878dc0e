package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hyperifyio/statscrape/internal/announce"
	"github.com/hyperifyio/statscrape/internal/sales"
)

// Config holds runtime configuration for all three tasks.
type Config struct {
	// HTTP
	UserAgent   string
	HTTPTimeout time.Duration
	MaxAttempts int

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheMaxEntries  int
	CacheClear       bool
	CacheStrictPerms bool
	CacheBypass      bool

	// Logging
	Verbose bool
	LogFile string

	// Aviation
	AviationURL  string
	OutDir       string
	RawDumpPath  string
	TextSource   string
	ProfilePath  string
	EnablePDF    bool
	AllowPartial bool

	// Announcement
	CompanyURL     string
	FromDate       string
	ToDate         string
	Keywords       []string
	DownloadDir    string
	Headless       bool
	ChromiumPath   string
	InstallDriver  bool
	MinPDFBytes    int64
	ResultsTimeout time.Duration

	// Sales
	SalesDir   string
	SalesPDF   string
	SalesOut   string
	SalesMonth string
}

const (
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultAviationURL = "https://www.civilaviation.gov.in/"
	defaultDownloadDir = "ashok_leyland_downloads"
)

// DefaultConfig returns the settings used when nothing else is configured.
func DefaultConfig() Config {
	q := announce.DefaultQuery()
	return Config{
		UserAgent:      defaultUserAgent,
		HTTPTimeout:    30 * time.Second,
		MaxAttempts:    2,
		CacheDir:       ".statscrape-cache",
		AviationURL:    defaultAviationURL,
		OutDir:         ".",
		RawDumpPath:    "raw_response.txt",
		TextSource:     "raw",
		CompanyURL:     q.CompanyURL,
		FromDate:       q.From.Format(announce.DateLayout),
		ToDate:         q.To.Format(announce.DateLayout),
		Keywords:       append([]string(nil), q.Keywords...),
		DownloadDir:    defaultDownloadDir,
		Headless:       true,
		MinPDFBytes:    1000,
		ResultsTimeout: 30 * time.Second,
		SalesMonth:     "May 2025",
	}
}

// Task names accepted by ValidateConfig.
const (
	TaskAviation     = "aviation"
	TaskAnnouncement = "announcement"
	TaskSales        = "sales"
)

// ValidateConfig checks the settings that task needs.
func ValidateConfig(cfg Config, task string) error {
	if cfg.MaxAttempts < 0 || cfg.HTTPTimeout < 0 || cfg.CacheMaxAge < 0 || cfg.CacheMaxEntries < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	switch task {
	case TaskAviation:
		if err := validateHTTPURL("aviation.url", cfg.AviationURL); err != nil {
			return err
		}
		switch cfg.TextSource {
		case "", "raw", "text":
		default:
			return fmt.Errorf("config: aviation.source must be raw or text, got %q", cfg.TextSource)
		}
	case TaskAnnouncement:
		if err := validateHTTPURL("announcement.companyURL", cfg.CompanyURL); err != nil {
			return err
		}
		from, to, err := cfg.dateRange()
		if err != nil {
			return err
		}
		if to.Before(from) {
			return fmt.Errorf("config: announcement date range %s..%s is reversed", cfg.FromDate, cfg.ToDate)
		}
		if strings.TrimSpace(cfg.DownloadDir) == "" {
			return errors.New("config: announcement.downloadDir is required")
		}
		if len(cfg.Keywords) == 0 {
			return errors.New("config: announcement.keywords must not be empty")
		}
	case TaskSales:
		if strings.TrimSpace(cfg.SalesPDF) == "" && strings.TrimSpace(cfg.salesDir()) == "" {
			return errors.New("config: sales.pdf or sales.dir is required")
		}
		if _, err := sales.ParseMonth(cfg.SalesMonth); err != nil {
			return fmt.Errorf("config: sales.month: %w", err)
		}
	default:
		return fmt.Errorf("config: unknown task %q", task)
	}
	return nil
}

func validateHTTPURL(name, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("config: %s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: %s must be an http(s) URL, got %q", name, raw)
	}
	return nil
}

func (cfg Config) dateRange() (time.Time, time.Time, error) {
	from, err := time.Parse(announce.DateLayout, strings.TrimSpace(cfg.FromDate))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("config: announcement.from %q: want dd/mm/yyyy", cfg.FromDate)
	}
	to, err := time.Parse(announce.DateLayout, strings.TrimSpace(cfg.ToDate))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("config: announcement.to %q: want dd/mm/yyyy", cfg.ToDate)
	}
	return from, to, nil
}

// salesDir defaults to the announcement download directory.
func (cfg Config) salesDir() string {
	if strings.TrimSpace(cfg.SalesDir) != "" {
		return cfg.SalesDir
	}
	return cfg.DownloadDir
}

// SplitList splits a comma-separated flag or env value, dropping blanks.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
