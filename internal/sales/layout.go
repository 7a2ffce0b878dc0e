package sales

import (
	"math"
	"sort"
	"strings"
)

// Glyph is a run of text placed on a page. Y grows upwards, as in PDF user
// space.
type Glyph struct {
	X, Y, W float64
	S       string
}

// Cell is a horizontally contiguous run of glyphs on one line.
type Cell struct {
	X0, X1 float64
	Text   string
}

// Line is one baseline of text split into cells.
type Line struct {
	Y     float64
	Cells []Cell
}

// FirstCell returns the leftmost cell's text, or "".
func (l Line) FirstCell() string {
	if len(l.Cells) == 0 {
		return ""
	}
	return l.Cells[0].Text
}

// Blank reports whether the line carries no visible text.
func (l Line) Blank() bool {
	for _, c := range l.Cells {
		if strings.TrimSpace(c.Text) != "" {
			return false
		}
	}
	return true
}

// Layout holds the tolerances used to rebuild table rows from glyphs, in
// PDF points.
type Layout struct {
	// LineTolerance is the largest baseline difference within one line.
	LineTolerance float64
	// WordGap is the horizontal gap that inserts a space inside a cell.
	WordGap float64
	// CellGap is the horizontal gap that starts a new cell.
	CellGap float64
	// ColumnTolerance widens cell extents when lining cells up in columns.
	ColumnTolerance float64
}

// DefaultLayout suits the single-table monthly sales releases.
func DefaultLayout() Layout {
	return Layout{LineTolerance: 2, WordGap: 1, CellGap: 8, ColumnTolerance: 5}
}

// Lines groups glyphs into lines from top to bottom and splits each line
// into cells.
func Lines(glyphs []Glyph, l Layout) []Line {
	gs := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S != "" {
			gs = append(gs, g)
		}
	}
	sort.SliceStable(gs, func(i, j int) bool {
		if math.Abs(gs[i].Y-gs[j].Y) > l.LineTolerance {
			return gs[i].Y > gs[j].Y
		}
		return gs[i].X < gs[j].X
	})

	var lines []Line
	var cur []Glyph
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, Line{Y: cur[0].Y, Cells: cells(cur, l)})
			cur = nil
		}
	}
	for _, g := range gs {
		if len(cur) > 0 && math.Abs(cur[0].Y-g.Y) > l.LineTolerance {
			flush()
		}
		cur = append(cur, g)
	}
	flush()
	return lines
}

func cells(gs []Glyph, l Layout) []Cell {
	sort.SliceStable(gs, func(i, j int) bool { return gs[i].X < gs[j].X })
	var out []Cell
	var b strings.Builder
	var c Cell
	open := false
	for _, g := range gs {
		if open {
			gap := g.X - c.X1
			switch {
			case gap > l.CellGap:
				c.Text = strings.TrimSpace(b.String())
				out = append(out, c)
				b.Reset()
				open = false
			case gap > l.WordGap && !strings.HasSuffix(b.String(), " ") && g.S != " ":
				b.WriteByte(' ')
			}
		}
		if !open {
			if strings.TrimSpace(g.S) == "" {
				continue
			}
			c = Cell{X0: g.X}
			open = true
		}
		b.WriteString(g.S)
		c.X1 = math.Max(c.X1, g.X+g.W)
	}
	if open {
		c.Text = strings.TrimSpace(b.String())
		out = append(out, c)
	}
	return out
}
