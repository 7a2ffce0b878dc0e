package app

import (
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig fills fields of cfg that still hold their default value
// from environment variables. Explicit flag values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	def := DefaultConfig()

	setString := func(dst *string, dflt, key string) {
		if *dst != dflt {
			return
		}
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, dflt time.Duration, key string) {
		if *dst != dflt {
			return
		}
		if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil {
			*dst = d
		}
	}
	setInt := func(dst *int, dflt int, key string) {
		if *dst != dflt {
			return
		}
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
			*dst = n
		}
	}
	setBool := func(dst *bool, dflt bool, key string) {
		if *dst != dflt {
			return
		}
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}

	setString(&cfg.UserAgent, def.UserAgent, "USER_AGENT")
	setDuration(&cfg.HTTPTimeout, def.HTTPTimeout, "HTTP_TIMEOUT")
	setInt(&cfg.MaxAttempts, def.MaxAttempts, "HTTP_MAX_ATTEMPTS")

	setString(&cfg.CacheDir, def.CacheDir, "CACHE_DIR")
	setDuration(&cfg.CacheMaxAge, def.CacheMaxAge, "CACHE_MAX_AGE")
	setInt(&cfg.CacheMaxEntries, def.CacheMaxEntries, "CACHE_MAX_ENTRIES")
	setBool(&cfg.CacheClear, def.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, def.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setBool(&cfg.CacheBypass, def.CacheBypass, "CACHE_BYPASS")

	setBool(&cfg.Verbose, def.Verbose, "VERBOSE")
	setString(&cfg.LogFile, def.LogFile, "LOG_FILE")

	setString(&cfg.AviationURL, def.AviationURL, "AVIATION_URL")
	setString(&cfg.OutDir, def.OutDir, "OUT_DIR")
	setString(&cfg.RawDumpPath, def.RawDumpPath, "RAW_DUMP")
	setString(&cfg.TextSource, def.TextSource, "TEXT_SOURCE")
	setString(&cfg.ProfilePath, def.ProfilePath, "PROFILE_PATH")
	setBool(&cfg.EnablePDF, def.EnablePDF, "ENABLE_PDF")
	setBool(&cfg.AllowPartial, def.AllowPartial, "ALLOW_PARTIAL")

	setString(&cfg.CompanyURL, def.CompanyURL, "COMPANY_URL")
	setString(&cfg.FromDate, def.FromDate, "ANNOUNCEMENT_FROM")
	setString(&cfg.ToDate, def.ToDate, "ANNOUNCEMENT_TO")
	if slices.Equal(cfg.Keywords, def.Keywords) {
		if v := os.Getenv("ANNOUNCEMENT_KEYWORDS"); strings.TrimSpace(v) != "" {
			cfg.Keywords = SplitList(v)
		}
	}
	setString(&cfg.DownloadDir, def.DownloadDir, "DOWNLOAD_DIR")
	setBool(&cfg.Headless, def.Headless, "HEADLESS")
	setString(&cfg.ChromiumPath, def.ChromiumPath, "CHROMIUM_PATH")
	setBool(&cfg.InstallDriver, def.InstallDriver, "PLAYWRIGHT_INSTALL")
	setDuration(&cfg.ResultsTimeout, def.ResultsTimeout, "RESULTS_TIMEOUT")
	if cfg.MinPDFBytes == def.MinPDFBytes {
		if n, err := strconv.ParseInt(strings.TrimSpace(os.Getenv("MIN_PDF_BYTES")), 10, 64); err == nil {
			cfg.MinPDFBytes = n
		}
	}

	setString(&cfg.SalesDir, def.SalesDir, "SALES_DIR")
	setString(&cfg.SalesPDF, def.SalesPDF, "SALES_PDF")
	setString(&cfg.SalesOut, def.SalesOut, "SALES_OUT")
	setString(&cfg.SalesMonth, def.SalesMonth, "SALES_MONTH")
}
