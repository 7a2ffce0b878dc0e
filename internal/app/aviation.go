package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/statscrape/internal/export"
	"github.com/hyperifyio/statscrape/internal/extract"
	"github.com/hyperifyio/statscrape/internal/stats"
)

// AviationReport is what one aviation run produced.
type AviationReport struct {
	Result   stats.Result
	Record   export.Record
	Saved    export.Saved
	Manifest string
	PDF      string
}

// Aviation fetches the ministry page, extracts the six traffic counters and
// exports them. A partial result is exported only when AllowPartial is set;
// otherwise the run stops with ErrPartialResult after logging what is missing.
func (a *App) Aviation(ctx context.Context) (AviationReport, error) {
	var rep AviationReport
	url := a.cfg.AviationURL

	log.Info().Str("url", url).Msg("fetching page")
	res, err := a.client.Fetch(ctx, url)
	if err != nil {
		return rep, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	log.Info().Str("cache", res.CacheStatus).Int("bytes", len(res.Body)).Msg("fetched page")

	body, err := extract.DecodeBody(res.Body, res.ContentType)
	if err != nil {
		return rep, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if a.cfg.RawDumpPath != "" {
		if err := os.WriteFile(a.cfg.RawDumpPath, []byte(body), 0o644); err != nil {
			log.Warn().Err(err).Str("path", a.cfg.RawDumpPath).Msg("could not save raw response")
		} else {
			log.Info().Str("path", a.cfg.RawDumpPath).Msg("saved raw response")
		}
	}

	doc := a.text.Extract(body)
	rep.Result = a.extractor.Extract(doc.Text)
	logResolution(rep.Result)

	now := a.now()
	rep.Record = export.NewRecord(rep.Result, now)

	if !rep.Result.Complete() {
		ev := log.Warn().Int("found", rep.Result.Len()).Int("want", len(stats.Fields)).
			Strs("missing", keyStrings(rep.Result.Missing()))
		if a.cfg.RawDumpPath != "" {
			ev = ev.Str("raw", a.cfg.RawDumpPath)
		}
		ev.Msg("could not resolve every field")
		if !a.cfg.AllowPartial {
			return rep, fmt.Errorf("%w: found %d of %d values", ErrPartialResult, rep.Result.Len(), len(stats.Fields))
		}
	}

	rep.Saved, err = export.SaveAviation(a.cfg.OutDir, rep.Record, now)
	if err != nil {
		return rep, fmt.Errorf("export: %w", err)
	}
	if rep.Saved.Fallback {
		log.Warn().Str("xlsx", rep.Saved.XLSX).Str("csv", rep.Saved.CSV).Msg("output dir not writable; saved to temp directory")
	} else {
		log.Info().Str("xlsx", rep.Saved.XLSX).Str("csv", rep.Saved.CSV).Msg("saved")
	}

	source := a.cfg.TextSource
	if source == "" {
		source = "raw"
	}
	rep.Manifest = manifestSidecarPath(rep.Saved.CSV)
	m := buildManifest(url, res.CacheStatus, res.ContentType, source, doc.Text, rep.Result, now)
	if err := writeManifest(rep.Manifest, m); err != nil {
		log.Warn().Err(err).Str("path", rep.Manifest).Msg("could not write manifest")
		rep.Manifest = ""
	}

	if a.cfg.EnablePDF {
		rep.PDF = strings.TrimSuffix(rep.Saved.CSV, ".csv") + ".pdf"
		err := export.WriteSummaryPDF(rep.PDF, export.Summary{Source: url, Record: rep.Record, Sources: rep.Result.Sources})
		if err != nil {
			return rep, fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("path", rep.PDF).Msg("wrote summary PDF")
	}

	export.RenderRecord(a.out, rep.Record)
	return rep, nil
}

// stageMessages name the cascade stage that resolved a field.
var stageMessages = map[stats.Tier]string{
	stats.TierLabeled:    "found",
	stats.TierShaped:     "fallback found",
	stats.TierPositional: "mapped",
}

func logResolution(res stats.Result) {
	if res.SectionScanned {
		log.Debug().Strs("numbers", res.SectionNumbers).Msg("numbers found in domestic section")
	}
	for _, k := range stats.Fields {
		v, ok := res.Get(k)
		if !ok {
			log.Debug().Str("field", string(k)).Msg("unresolved")
			continue
		}
		tier := res.Sources[k]
		log.Debug().Str("field", string(k)).Int64("value", v).Str("tier", tier.String()).Msg(stageMessages[tier])
	}
}

func keyStrings(keys []stats.FieldKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
