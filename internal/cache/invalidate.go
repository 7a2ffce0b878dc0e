package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ClearDir removes the directory and all contents, then recreates it empty.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// PurgeHTTPCacheByAge removes entries whose meta SavedAt is older than maxAge
// and returns how many were removed. Unreadable or malformed meta files are
// left alone.
func PurgeHTTPCacheByAge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	removed := 0
	err := walkMeta(dir, func(path string) {
		b, err := os.ReadFile(path)
		if err != nil {
			return
		}
		var e HTTPEntry
		if err := json.Unmarshal(b, &e); err != nil {
			return
		}
		if now.Sub(e.SavedAt) <= maxAge {
			return
		}
		removed++
		removeEntry(path)
	})
	return removed, err
}

// EnforceHTTPCacheLimits evicts least recently used entries, by body mtime,
// until at most maxCount entries and maxBytes body bytes remain. Zero
// disables a limit.
func EnforceHTTPCacheLimits(dir string, maxBytes int64, maxCount int) (int, error) {
	if maxBytes <= 0 && maxCount <= 0 {
		return 0, nil
	}
	type entry struct {
		meta  string
		size  int64
		mtime time.Time
	}
	var entries []entry
	var total int64
	err := walkMeta(dir, func(path string) {
		info, err := os.Stat(strings.TrimSuffix(path, ".meta.json") + ".body")
		if err != nil {
			return
		}
		entries = append(entries, entry{meta: path, size: info.Size(), mtime: info.ModTime()})
		total += info.Size()
	})
	if err != nil {
		return 0, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].mtime.Before(entries[j].mtime) })

	removed := 0
	for _, e := range entries {
		overCount := maxCount > 0 && len(entries)-removed > maxCount
		overBytes := maxBytes > 0 && total > maxBytes
		if !overCount && !overBytes {
			break
		}
		removeEntry(e.meta)
		total -= e.size
		removed++
	}
	return removed, nil
}

func walkMeta(dir string, fn func(path string)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".meta.json") {
			fn(path)
		}
		return nil
	})
}

func removeEntry(metaPath string) {
	_ = os.Remove(metaPath)
	_ = os.Remove(strings.TrimSuffix(metaPath, ".meta.json") + ".body")
}
