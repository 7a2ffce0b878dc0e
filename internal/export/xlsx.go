package export

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/hyperifyio/statscrape/internal/stats"
)

const sheet = "Sheet1"

// WriteXLSX saves the records to a workbook at path, numbers as numbers.
func WriteXLSX(path string, recs ...Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if len(recs) > 0 {
		if err := setRow(f, 1, toAny(recs[0].Header())); err != nil {
			return err
		}
	}
	for i, r := range recs {
		row := []any{r.Date}
		for _, k := range stats.Fields {
			if v, ok := r.Values[k]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// WriteSalesXLSX saves a sales table with a bold header, centered cells and
// columns sized to their longest value.
func WriteSalesXLSX(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := setRow(f, 1, toAny(header)); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(f, i+2, toAny(r)); err != nil {
			return err
		}
	}

	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	headStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, Alignment: center})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{Alignment: center})
	if err != nil {
		return fmt.Errorf("body style: %w", err)
	}

	lastCol := len(header)
	for _, r := range rows {
		if len(r) > lastCol {
			lastCol = len(r)
		}
	}
	if lastCol == 0 {
		return f.SaveAs(path)
	}
	last, err := excelize.CoordinatesToCellName(lastCol, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headStyle); err != nil {
		return err
	}
	if len(rows) > 0 {
		last, err = excelize.CoordinatesToCellName(lastCol, len(rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A2", last, bodyStyle); err != nil {
			return err
		}
	}

	for c, w := range columnWidths(header, rows, lastCol) {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// columnWidths is the longest non-empty value per column plus two.
func columnWidths(header []string, rows [][]string, n int) []float64 {
	widths := make([]float64, n)
	measure := func(r []string) {
		for i, s := range r {
			if l := float64(utf8.RuneCountInString(s)); s != "" && l+2 > widths[i] {
				widths[i] = l + 2
			}
		}
	}
	measure(header)
	for _, r := range rows {
		measure(r)
	}
	return widths
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
