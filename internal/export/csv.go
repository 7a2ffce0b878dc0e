package export

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes a header line and one row per record.
func WriteCSV(w io.Writer, recs ...Record) error {
	cw := csv.NewWriter(w)
	if len(recs) > 0 {
		if err := cw.Write(recs[0].Header()); err != nil {
			return err
		}
	}
	for _, r := range recs {
		if err := cw.Write(r.Cells()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
