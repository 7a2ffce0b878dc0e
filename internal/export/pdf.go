package export

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/statscrape/internal/stats"
)

// Summary is what the PDF report shows about one aviation run.
type Summary struct {
	Title  string
	Source string
	Record Record
	// Sources names the tier that resolved each field.
	Sources map[stats.FieldKey]stats.Tier
}

// WriteSummaryPDF renders a one-page A4 summary: a heading, the source URL
// and a table of field, value and resolving tier.
func WriteSummaryPDF(path string, s Summary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	title := s.Title
	if title == "" {
		title = "Daily domestic air traffic"
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Date: "+s.Record.Date, "", 1, "L", false, 0, "")
	if s.Source != "" {
		pdf.WriteLinkString(6, s.Source, s.Source)
		pdf.Ln(8)
	}
	pdf.Ln(2)

	widths := []float64{70, 50, 40}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Field", "Value", "Tier"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, k := range stats.Fields {
		value, tier := "n/a", "unresolved"
		if v, ok := s.Record.Values[k]; ok {
			value = humanize.Comma(v)
			if t, ok := s.Sources[k]; ok {
				tier = t.String()
			}
		}
		pdf.CellFormat(widths[0], 7, string(k), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, value, "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, tier, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)
	pdf.CellFormat(0, 6, fmt.Sprintf("Resolved %d of %d fields", len(s.Record.Values), len(stats.Fields)), "", 1, "L", false, 0, "")

	return pdf.OutputFileAndClose(path)
}
