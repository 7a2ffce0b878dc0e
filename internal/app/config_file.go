package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema. Sections mirror the
// dotted flag names.
type FileConfig struct {
	UserAgent string `yaml:"userAgent" json:"userAgent"`

	HTTP struct {
		Timeout     time.Duration `yaml:"timeout" json:"timeout"`
		MaxAttempts int           `yaml:"maxAttempts" json:"maxAttempts"`
	} `yaml:"http" json:"http"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		MaxEntries  int           `yaml:"maxEntries" json:"maxEntries"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
		Bypass      bool          `yaml:"bypass" json:"bypass"`
	} `yaml:"cache" json:"cache"`

	Log struct {
		File    string `yaml:"file" json:"file"`
		Verbose bool   `yaml:"verbose" json:"verbose"`
	} `yaml:"log" json:"log"`

	Aviation struct {
		URL          string  `yaml:"url" json:"url"`
		OutDir       string  `yaml:"outDir" json:"outDir"`
		RawDump      *string `yaml:"rawDump" json:"rawDump"`
		Source       string  `yaml:"source" json:"source"`
		Profile      string  `yaml:"profile" json:"profile"`
		PDF          bool    `yaml:"pdf" json:"pdf"`
		AllowPartial bool    `yaml:"allowPartial" json:"allowPartial"`
	} `yaml:"aviation" json:"aviation"`

	Announcement struct {
		CompanyURL     string        `yaml:"companyURL" json:"companyURL"`
		From           string        `yaml:"from" json:"from"`
		To             string        `yaml:"to" json:"to"`
		Keywords       []string      `yaml:"keywords" json:"keywords"`
		DownloadDir    string        `yaml:"downloadDir" json:"downloadDir"`
		Headless       *bool         `yaml:"headless" json:"headless"`
		ChromiumPath   string        `yaml:"chromiumPath" json:"chromiumPath"`
		InstallDriver  bool          `yaml:"installDriver" json:"installDriver"`
		MinBytes       int64         `yaml:"minBytes" json:"minBytes"`
		ResultsTimeout time.Duration `yaml:"resultsTimeout" json:"resultsTimeout"`
	} `yaml:"announcement" json:"announcement"`

	Sales struct {
		Dir   string `yaml:"dir" json:"dir"`
		PDF   string `yaml:"pdf" json:"pdf"`
		Out   string `yaml:"out" json:"out"`
		Month string `yaml:"month" json:"month"`
	} `yaml:"sales" json:"sales"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc onto fields of cfg that still hold
// their default value, so flags and env keep precedence over the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	def := DefaultConfig()

	str := func(dst *string, dflt, v string) {
		if *dst == dflt && v != "" {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, dflt, v time.Duration) {
		if *dst == dflt && v > 0 {
			*dst = v
		}
	}
	flag := func(dst *bool, v bool) {
		if !*dst && v {
			*dst = true
		}
	}

	str(&cfg.UserAgent, def.UserAgent, fc.UserAgent)
	dur(&cfg.HTTPTimeout, def.HTTPTimeout, fc.HTTP.Timeout)
	if cfg.MaxAttempts == def.MaxAttempts && fc.HTTP.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.HTTP.MaxAttempts
	}

	str(&cfg.CacheDir, def.CacheDir, fc.Cache.Dir)
	dur(&cfg.CacheMaxAge, def.CacheMaxAge, fc.Cache.MaxAge)
	if cfg.CacheMaxEntries == def.CacheMaxEntries && fc.Cache.MaxEntries > 0 {
		cfg.CacheMaxEntries = fc.Cache.MaxEntries
	}
	flag(&cfg.CacheClear, fc.Cache.Clear)
	flag(&cfg.CacheStrictPerms, fc.Cache.StrictPerms)
	flag(&cfg.CacheBypass, fc.Cache.Bypass)

	str(&cfg.LogFile, def.LogFile, fc.Log.File)
	flag(&cfg.Verbose, fc.Log.Verbose)

	str(&cfg.AviationURL, def.AviationURL, fc.Aviation.URL)
	str(&cfg.OutDir, def.OutDir, fc.Aviation.OutDir)
	if cfg.RawDumpPath == def.RawDumpPath && fc.Aviation.RawDump != nil {
		cfg.RawDumpPath = *fc.Aviation.RawDump
	}
	str(&cfg.TextSource, def.TextSource, fc.Aviation.Source)
	str(&cfg.ProfilePath, def.ProfilePath, fc.Aviation.Profile)
	flag(&cfg.EnablePDF, fc.Aviation.PDF)
	flag(&cfg.AllowPartial, fc.Aviation.AllowPartial)

	str(&cfg.CompanyURL, def.CompanyURL, fc.Announcement.CompanyURL)
	str(&cfg.FromDate, def.FromDate, fc.Announcement.From)
	str(&cfg.ToDate, def.ToDate, fc.Announcement.To)
	if slices.Equal(cfg.Keywords, def.Keywords) && len(fc.Announcement.Keywords) > 0 {
		cfg.Keywords = append([]string(nil), fc.Announcement.Keywords...)
	}
	str(&cfg.DownloadDir, def.DownloadDir, fc.Announcement.DownloadDir)
	if cfg.Headless == def.Headless && fc.Announcement.Headless != nil {
		cfg.Headless = *fc.Announcement.Headless
	}
	str(&cfg.ChromiumPath, def.ChromiumPath, fc.Announcement.ChromiumPath)
	flag(&cfg.InstallDriver, fc.Announcement.InstallDriver)
	if cfg.MinPDFBytes == def.MinPDFBytes && fc.Announcement.MinBytes > 0 {
		cfg.MinPDFBytes = fc.Announcement.MinBytes
	}
	dur(&cfg.ResultsTimeout, def.ResultsTimeout, fc.Announcement.ResultsTimeout)

	str(&cfg.SalesDir, def.SalesDir, fc.Sales.Dir)
	str(&cfg.SalesPDF, def.SalesPDF, fc.Sales.PDF)
	str(&cfg.SalesOut, def.SalesOut, fc.Sales.Out)
	str(&cfg.SalesMonth, def.SalesMonth, fc.Sales.Month)
}
