package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hyperifyio/statscrape/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("run failed")
	}
	os.Exit(app.ExitCode(err))
}

// options are the flag values shared by every subcommand.
type options struct {
	cfg        app.Config
	configPath string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	o := &options{cfg: app.DefaultConfig()}
	root := &cobra.Command{
		Use:           "statscrape",
		Short:         "statscrape collects aviation traffic and vehicle sales figures from public sources.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Path to a YAML or JSON config file")
	pf.StringSliceVar(&o.envFiles, "env", []string{".env"}, "Dotenv files to load before reading the environment")
	pf.BoolVarP(&o.cfg.Verbose, "verbose", "v", o.cfg.Verbose, "Verbose logging")
	pf.StringVar(&o.cfg.LogFile, "log.file", o.cfg.LogFile, "Also write logs to this file (rotated)")
	pf.StringVar(&o.cfg.UserAgent, "user.agent", o.cfg.UserAgent, "User-Agent for HTTP requests and the browser")
	pf.DurationVar(&o.cfg.HTTPTimeout, "http.timeout", o.cfg.HTTPTimeout, "Timeout for each HTTP request")
	pf.IntVar(&o.cfg.MaxAttempts, "http.maxAttempts", o.cfg.MaxAttempts, "Attempts per request on transient errors")
	pf.StringVar(&o.cfg.CacheDir, "cache.dir", o.cfg.CacheDir, "HTTP cache directory; empty disables caching")
	pf.DurationVar(&o.cfg.CacheMaxAge, "cache.maxAge", o.cfg.CacheMaxAge, "Purge cache entries older than this (0 disables)")
	pf.IntVar(&o.cfg.CacheMaxEntries, "cache.maxEntries", o.cfg.CacheMaxEntries, "Keep at most this many cache entries (0 disables)")
	pf.BoolVar(&o.cfg.CacheClear, "cache.clear", o.cfg.CacheClear, "Clear the cache directory before running")
	pf.BoolVar(&o.cfg.CacheStrictPerms, "cache.strictPerms", o.cfg.CacheStrictPerms, "Restrict cache permissions (0700 dirs, 0600 files)")
	pf.BoolVar(&o.cfg.CacheBypass, "cache.bypass", o.cfg.CacheBypass, "Ignore cached responses for this run")

	root.AddCommand(
		newAviationCmd(o),
		newAnnouncementCmd(o),
		newSalesCmd(o),
		newVersionCmd(),
	)
	return root
}

func newAviationCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aviation",
		Short: "Scrape today's domestic traffic counters and export them to XLSX and CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, o, app.TaskAviation)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.cfg.AviationURL, "url", o.cfg.AviationURL, "Page to scrape")
	f.StringVar(&o.cfg.OutDir, "out.dir", o.cfg.OutDir, "Directory for the exported files")
	f.StringVar(&o.cfg.RawDumpPath, "raw.dump", o.cfg.RawDumpPath, "Save the fetched page here (empty disables)")
	f.StringVar(&o.cfg.TextSource, "source", o.cfg.TextSource, "Text to extract from: raw (page source) or text (visible text)")
	f.StringVar(&o.cfg.ProfilePath, "profile", o.cfg.ProfilePath, "YAML or JSON extraction profile replacing the built-in patterns")
	f.BoolVar(&o.cfg.EnablePDF, "pdf", o.cfg.EnablePDF, "Also write a one-page PDF summary")
	f.BoolVar(&o.cfg.AllowPartial, "allow.partial", o.cfg.AllowPartial, "Export even when some fields could not be resolved")
	return cmd
}

func newAnnouncementCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "announcement",
		Short: "Search the company's exchange announcements and download the matching PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, o, app.TaskAnnouncement)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.cfg.CompanyURL, "company.url", o.cfg.CompanyURL, "Announcements page of the company")
	f.StringVar(&o.cfg.FromDate, "from", o.cfg.FromDate, "Start date (dd/mm/yyyy)")
	f.StringVar(&o.cfg.ToDate, "to", o.cfg.ToDate, "End date (dd/mm/yyyy)")
	f.StringSliceVar(&o.cfg.Keywords, "keywords", o.cfg.Keywords, "Row keywords that select a PDF link")
	f.StringVar(&o.cfg.DownloadDir, "download.dir", o.cfg.DownloadDir, "Directory for the downloaded PDF")
	f.BoolVar(&o.cfg.Headless, "headless", o.cfg.Headless, "Run the browser without a window")
	f.StringVar(&o.cfg.ChromiumPath, "chromium.path", o.cfg.ChromiumPath, "Chromium executable (default: the Playwright-managed one)")
	f.BoolVar(&o.cfg.InstallDriver, "install", o.cfg.InstallDriver, "Install the Playwright driver before launching")
	f.Int64Var(&o.cfg.MinPDFBytes, "min.bytes", o.cfg.MinPDFBytes, "Reject downloads of this size or smaller")
	f.DurationVar(&o.cfg.ResultsTimeout, "results.timeout", o.cfg.ResultsTimeout, "How long to wait for search results")
	return cmd
}

func newSalesCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Extract the Domestic block of the monthly sales PDF into an XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, o, app.TaskSales)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.cfg.SalesDir, "dir", o.cfg.SalesDir, "Directory searched for the newest PDF (default: the download dir)")
	f.StringVar(&o.cfg.SalesPDF, "pdf", o.cfg.SalesPDF, "Parse this PDF instead of the newest one")
	f.StringVar(&o.cfg.SalesOut, "out", o.cfg.SalesOut, "Output workbook (default: next to the PDF)")
	f.StringVar(&o.cfg.SalesMonth, "month", o.cfg.SalesMonth, "Reporting month, e.g. \"May 2025\"")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.VersionString())
		},
	}
}

// run resolves the configuration layers and executes one task.
func run(cmd *cobra.Command, o *options, task string) error {
	if err := app.LoadEnvFiles(o.envFiles...); err != nil {
		return err
	}
	cfg := o.cfg
	app.ApplyEnvToConfig(&cfg)
	if o.configPath != "" {
		fc, err := app.LoadConfigFile(o.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}

	closer := setupLogging(cmd.ErrOrStderr(), cfg)
	defer closer.Close()

	if err := app.ValidateConfig(cfg, task); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	a.SetOutput(cmd.OutOrStdout())

	switch task {
	case app.TaskAviation:
		_, err = a.Aviation(ctx)
	case app.TaskAnnouncement:
		_, err = a.Announcement(ctx)
	case app.TaskSales:
		_, err = a.Sales(ctx)
	default:
		err = errors.New("unknown task " + task)
	}
	return err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupLogging points the global logger at a console writer on w and, when a
// log file is configured, a rotating file sink.
func setupLogging(w io.Writer, cfg app.Config) io.Closer {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	if cfg.LogFile == "" {
		log.Logger = log.Output(console)
		return nopCloser{}
	}
	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).With().Timestamp().Logger()
	return file
}
