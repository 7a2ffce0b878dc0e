package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Saved reports where SaveAviation wrote its files.
type Saved struct {
	XLSX string
	CSV  string
	// Fallback is set when dir was not writable and the temp dir was used.
	Fallback bool
}

// FileStem returns aviation_data_<timestamp> for t.
func FileStem(t time.Time) string {
	return "aviation_data_" + t.Format("2006_01_02_15_04_05")
}

// writeAviation writes both files into one directory.
var writeAviation = saveAviationTo

// SaveAviation writes the record as XLSX and CSV into dir. When dir refuses
// the write with a permission error, both files go to os.TempDir instead.
func SaveAviation(dir string, rec Record, now time.Time) (Saved, error) {
	stem := FileStem(now)
	s, err := writeAviation(dir, stem, rec)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return Saved{}, err
	}
	s, err = writeAviation(os.TempDir(), stem, rec)
	if err != nil {
		return Saved{}, err
	}
	s.Fallback = true
	return s, nil
}

func saveAviationTo(dir, stem string, rec Record) (Saved, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Saved{}, err
	}
	s := Saved{
		XLSX: filepath.Join(dir, stem+".xlsx"),
		CSV:  filepath.Join(dir, stem+".csv"),
	}
	if err := WriteXLSX(s.XLSX, rec); err != nil {
		return Saved{}, fmt.Errorf("write %s: %w", s.XLSX, err)
	}
	f, err := os.Create(s.CSV)
	if err != nil {
		return Saved{}, err
	}
	if err := WriteCSV(f, rec); err != nil {
		f.Close()
		return Saved{}, fmt.Errorf("write %s: %w", s.CSV, err)
	}
	if err := f.Close(); err != nil {
		return Saved{}, err
	}
	return s, nil
}
