package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/hyperifyio/statscrape/internal/stats"
)

// manifestField records how one field was resolved.
type manifestField struct {
	Key   string `json:"key"`
	Value *int64 `json:"value"`
	Tier  string `json:"tier,omitempty"`
}

// manifest is the JSON sidecar written next to each aviation export.
type manifest struct {
	URL            string          `json:"url"`
	CacheStatus    string          `json:"cache_status"`
	ContentType    string          `json:"content_type"`
	TextSource     string          `json:"text_source"`
	TextSHA256     string          `json:"text_sha256"`
	TextChars      int             `json:"text_chars"`
	Fields         []manifestField `json:"fields"`
	Resolved       int             `json:"resolved"`
	Complete       bool            `json:"complete"`
	SectionScanned bool            `json:"section_scanned"`
	SectionNumbers []string        `json:"section_numbers,omitempty"`
	Version        string          `json:"version"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of the given text.
func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

func buildManifest(url, cacheStatus, contentType, source, text string, res stats.Result, now time.Time) manifest {
	m := manifest{
		URL:            url,
		CacheStatus:    cacheStatus,
		ContentType:    contentType,
		TextSource:     source,
		TextSHA256:     computeSHA256Hex(text),
		TextChars:      len(text),
		Resolved:       res.Len(),
		Complete:       res.Complete(),
		SectionScanned: res.SectionScanned,
		SectionNumbers: res.SectionNumbers,
		Version:        BuildVersion,
		GeneratedAt:    now.UTC(),
	}
	for _, k := range stats.Fields {
		f := manifestField{Key: string(k)}
		if v, ok := res.Get(k); ok {
			v := v
			f.Value = &v
			f.Tier = res.Sources[k].String()
		}
		m.Fields = append(m.Fields, f)
	}
	return m
}

// writeManifest encodes m as indented JSON at path.
func writeManifest(path string, m manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// manifestSidecarPath derives <stem>.manifest.json from an export path.
func manifestSidecarPath(exportPath string) string {
	for _, ext := range []string{".csv", ".xlsx"} {
		if strings.HasSuffix(exportPath, ext) {
			return strings.TrimSuffix(exportPath, ext) + ".manifest.json"
		}
	}
	return exportPath + ".manifest.json"
}
