package sales

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrNoDomesticBlock means no page has a row starting with the block start
// marker.
var ErrNoDomesticBlock = errors.New("could not find Domestic block in PDF")

// Block markers, matched case-insensitively against a line's first cell.
const (
	BlockStart = "M&HCV TRUCKS"
	BlockEnd   = "TOTAL VEHICLES"
)

// Width is the number of columns kept in the output table.
const Width = 7

// DomesticBlock returns the lines from the first one whose first cell
// contains BlockStart through the one containing BlockEnd. Capture stops at
// the end of the page when BlockEnd never appears. Blank lines are skipped.
func DomesticBlock(pages [][]Line) ([]Line, error) {
	for _, lines := range pages {
		var block []Line
		for _, ln := range lines {
			if ln.Blank() {
				continue
			}
			first := strings.ToUpper(ln.FirstCell())
			if len(block) == 0 && !strings.Contains(first, BlockStart) {
				continue
			}
			block = append(block, ln)
			if strings.Contains(first, BlockEnd) {
				break
			}
		}
		if len(block) > 0 {
			return block, nil
		}
	}
	return nil, ErrNoDomesticBlock
}

type span struct{ x0, x1 float64 }

// columns merges the horizontal extents of every cell in lines into column
// spans, left to right. Extents closer than tol join the same column.
func columns(lines []Line, tol float64) []span {
	var spans []span
	for _, ln := range lines {
		for _, c := range ln.Cells {
			spans = append(spans, span{c.X0 - tol, c.X1 + tol})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].x0 < spans[j].x0 })
	var merged []span
	for _, s := range spans {
		if n := len(merged); n > 0 && s.x0 <= merged[n-1].x1 {
			if s.x1 > merged[n-1].x1 {
				merged[n-1].x1 = s.x1
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// Grid lines the cells of lines up in shared columns. Cells falling in the
// same column on one line are joined with a space.
func Grid(lines []Line, tol float64) [][]string {
	cols := columns(lines, tol)
	grid := make([][]string, 0, len(lines))
	for _, ln := range lines {
		row := make([]string, len(cols))
		for _, c := range ln.Cells {
			mid := (c.X0 + c.X1) / 2
			for i, col := range cols {
				if mid >= col.x0 && mid <= col.x1 {
					if row[i] != "" {
						row[i] += " "
					}
					row[i] += c.Text
					break
				}
			}
		}
		grid = append(grid, row)
	}
	return grid
}

// Normalize drops columns that are empty in every row, then keeps the first
// width columns, padding short rows with empty cells.
func Normalize(grid [][]string, width int) [][]string {
	var keep []int
	for i := 0; ; i++ {
		present, nonEmpty := false, false
		for _, row := range grid {
			if i < len(row) {
				present = true
				if strings.TrimSpace(row[i]) != "" {
					nonEmpty = true
					break
				}
			}
		}
		if !present {
			break
		}
		if nonEmpty {
			keep = append(keep, i)
		}
	}
	out := make([][]string, 0, len(grid))
	for _, row := range grid {
		r := make([]string, width)
		for j := 0; j < width && j < len(keep); j++ {
			if keep[j] < len(row) {
				r[j] = strings.TrimSpace(row[keep[j]])
			}
		}
		out = append(out, r)
	}
	return out
}

// Columns returns the output header for a reporting month, e.g. May'25 and
// May'24 for May 2025.
func Columns(month time.Time) []string {
	cur := month.Format("Jan'06")
	prev := month.AddDate(-1, 0, 0).Format("Jan'06")
	return []string{
		"CATEGORY",
		cur,
		prev,
		"Inc/Dec (Month)",
		cur + " (Cumulative)",
		prev + " (Cumulative)",
		"Inc/Dec (Cumulative)",
	}
}

// ParseMonth reads a reporting month such as "May 2025" or "2025-05".
func ParseMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"January 2006", "Jan 2006", "2006-01", "Jan'06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized month %q (want e.g. May 2025)", s)
}
