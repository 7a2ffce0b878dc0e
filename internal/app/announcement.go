package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/statscrape/internal/announce"
)

// Announcement searches the company's announcements in a browser and returns
// the path of the downloaded PDF.
func (a *App) Announcement(ctx context.Context) (string, error) {
	from, to, err := a.cfg.dateRange()
	if err != nil {
		return "", err
	}
	q := announce.DefaultQuery()
	q.CompanyURL = a.cfg.CompanyURL
	q.From, q.To = from, to
	q.Keywords = a.cfg.Keywords

	browser, err := a.newBrowser(announce.PlaywrightOptions{
		Headless:       a.cfg.Headless,
		ExecutablePath: a.cfg.ChromiumPath,
		UserAgent:      a.cfg.UserAgent,
		Install:        a.cfg.InstallDriver,
	})
	if err != nil {
		return "", fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			log.Debug().Err(err).Msg("browser close")
		}
	}()

	dl := &announce.Downloader{
		Browser:        browser,
		Client:         a.client,
		Dir:            a.cfg.DownloadDir,
		MinBytes:       a.cfg.MinPDFBytes,
		ResultsTimeout: a.cfg.ResultsTimeout,
		Settle:         a.settle,
		Now:            a.now,
	}
	log.Info().Str("url", q.CompanyURL).Str("from", a.cfg.FromDate).Str("to", a.cfg.ToDate).Msg("searching announcements")
	start := a.now()
	path, err := dl.Run(ctx, q)
	log.Info().Dur("elapsed", a.now().Sub(start)).Msg("announcement search finished")
	if err != nil {
		return "", err
	}
	fmt.Fprintf(a.out, "PDF downloaded: %s\n", path)
	return path, nil
}
