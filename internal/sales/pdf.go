package sales

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// ErrNoPDF means the download directory holds no PDF files.
var ErrNoPDF = errors.New("no PDF files found")

// LatestPDF returns the most recently modified .pdf file in dir.
func LatestPDF(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", dir, ErrNoPDF)
		}
		return "", err
	}
	var best string
	var bestTime time.Time
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestTime) {
			best = filepath.Join(dir, e.Name())
			bestTime = info.ModTime()
		}
	}
	if best == "" {
		return "", fmt.Errorf("%s: %w", dir, ErrNoPDF)
	}
	return best, nil
}

// ReadGlyphs returns the positioned text of every page of the PDF at path.
func ReadGlyphs(path string) (pages [][]Glyph, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// The reader panics on some malformed content streams.
	defer func() {
		if p := recover(); p != nil {
			pages = nil
			err = fmt.Errorf("read %s: %v", path, p)
		}
	}()

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		texts := page.Content().Text
		gs := make([]Glyph, 0, len(texts))
		for _, t := range texts {
			gs = append(gs, Glyph{X: t.X, Y: t.Y, W: t.W, S: t.S})
		}
		pages = append(pages, gs)
	}
	return pages, nil
}

// Table is the parsed Domestic sales block.
type Table struct {
	Header []string
	Rows   [][]string
}

// Parse reads the PDF at path and returns its Domestic sales block with the
// headers for month.
func Parse(path string, month time.Time, l Layout) (Table, error) {
	glyphs, err := ReadGlyphs(path)
	if err != nil {
		return Table{}, err
	}
	return FromGlyphs(glyphs, month, l)
}

// FromGlyphs builds the table from already extracted page glyphs.
func FromGlyphs(pages [][]Glyph, month time.Time, l Layout) (Table, error) {
	lines := make([][]Line, 0, len(pages))
	for _, gs := range pages {
		lines = append(lines, Lines(gs, l))
	}
	block, err := DomesticBlock(lines)
	if err != nil {
		return Table{}, err
	}
	return Table{
		Header: Columns(month),
		Rows:   Normalize(Grid(block, l.ColumnTolerance), Width),
	}, nil
}
