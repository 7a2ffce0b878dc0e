package export

import (
	"strconv"
	"time"

	"github.com/hyperifyio/statscrape/internal/stats"
)

// DateLayout formats the record date.
const DateLayout = "2006-01-02"

// Record is one exported row of aviation statistics.
type Record struct {
	Date   string
	Values map[stats.FieldKey]int64
}

// NewRecord stamps res with the date of now.
func NewRecord(res stats.Result, now time.Time) Record {
	values := make(map[stats.FieldKey]int64, len(res.Values))
	for k, v := range res.Values {
		values[k] = v
	}
	return Record{Date: now.Format(DateLayout), Values: values}
}

// Header is Date followed by the fields in canonical order.
func (r Record) Header() []string {
	h := make([]string, 0, len(stats.Fields)+1)
	h = append(h, "Date")
	for _, k := range stats.Fields {
		h = append(h, string(k))
	}
	return h
}

// Cells renders the row in Header order. Unresolved fields are empty.
func (r Record) Cells() []string {
	out := make([]string, 0, len(stats.Fields)+1)
	out = append(out, r.Date)
	for _, k := range stats.Fields {
		if v, ok := r.Values[k]; ok {
			out = append(out, strconv.FormatInt(v, 10))
		} else {
			out = append(out, "")
		}
	}
	return out
}
