package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/statscrape/internal/announce"
	"github.com/hyperifyio/statscrape/internal/cache"
	"github.com/hyperifyio/statscrape/internal/extract"
	"github.com/hyperifyio/statscrape/internal/fetch"
	"github.com/hyperifyio/statscrape/internal/stats"
)

// App wires configuration to the task pipelines.
type App struct {
	cfg       Config
	httpCache *cache.HTTPCache
	client    *fetch.Client
	extractor *stats.Extractor
	text      extract.Extractor
	out       io.Writer

	now        func() time.Time
	settle     time.Duration
	newBrowser func(announce.PlaywrightOptions) (announce.Browser, error)
}

// New prepares the cache and HTTP client. Cache maintenance errors are
// logged and do not stop the run.
func New(ctx context.Context, cfg Config) (*App, error) {
	text, err := extract.ForSource(cfg.TextSource)
	if err != nil {
		return nil, err
	}
	var profile *stats.Profile
	if cfg.ProfilePath != "" {
		profile, err = stats.LoadProfile(cfg.ProfilePath)
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
	}

	a := &App{
		cfg:        cfg,
		extractor:  stats.New(profile),
		text:       text,
		out:        os.Stdout,
		now:        time.Now,
		settle:     time.Second,
		newBrowser: announce.NewPlaywrightBrowser,
	}

	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeHTTPCacheByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged expired cache entries")
			}
		}
		if cfg.CacheMaxEntries > 0 {
			if _, err := cache.EnforceHTTPCacheLimits(cfg.CacheDir, 0, cfg.CacheMaxEntries); err != nil {
				log.Warn().Err(err).Msg("cache limit enforcement failed")
			}
		}
		a.httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	a.client = &fetch.Client{
		HTTPClient:        newHTTPClient(cfg.HTTPTimeout),
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.MaxAttempts,
		PerRequestTimeout: cfg.HTTPTimeout,
		Cache:             a.httpCache,
		BypassCache:       cfg.CacheBypass,
	}
	return a, nil
}

// SetOutput redirects the tables printed by the tasks.
func (a *App) SetOutput(w io.Writer) { a.out = w }

// Close releases idle connections held by the app.
func (a *App) Close() {
	if a.client != nil && a.client.HTTPClient != nil {
		a.client.HTTPClient.CloseIdleConnections()
	}
}
