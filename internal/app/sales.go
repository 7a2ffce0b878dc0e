package app

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/statscrape/internal/export"
	"github.com/hyperifyio/statscrape/internal/sales"
)

const salesWorkbook = "ashok_leyland_domestic.xlsx"

// Sales parses the Domestic block of the sales PDF into a workbook and
// returns its path.
func (a *App) Sales(ctx context.Context) (string, error) {
	pdfPath := a.cfg.SalesPDF
	if pdfPath == "" {
		p, err := sales.LatestPDF(a.cfg.salesDir())
		if err != nil {
			return "", err
		}
		pdfPath = p
	}
	log.Info().Str("pdf", pdfPath).Msg("using PDF")
	if err := ctx.Err(); err != nil {
		return "", err
	}

	month, err := sales.ParseMonth(a.cfg.SalesMonth)
	if err != nil {
		return "", err
	}
	tbl, err := sales.Parse(pdfPath, month, sales.DefaultLayout())
	if err != nil {
		return "", err
	}

	out := a.cfg.SalesOut
	if out == "" {
		out = filepath.Join(filepath.Dir(pdfPath), salesWorkbook)
	}
	if err := export.WriteSalesXLSX(out, tbl.Header, tbl.Rows); err != nil {
		return "", err
	}
	log.Info().Str("path", out).Int("rows", len(tbl.Rows)).Msg("domestic sales data saved")
	export.RenderTable(a.out, tbl.Header, tbl.Rows)
	return out, nil
}
