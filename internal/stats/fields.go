// Package stats extracts the six civil aviation traffic counters from page
// text using a cascade of progressively looser strategies.
package stats

import (
	"strconv"
	"strings"
)

// FieldKey identifies one of the traffic counters published on the page.
type FieldKey string

const (
	DepartingFlights    FieldKey = "Departing_Flights"
	DepartingPassengers FieldKey = "Departing_Passengers"
	ArrivingFlights     FieldKey = "Arriving_Flights"
	ArrivingPassengers  FieldKey = "Arriving_Passengers"
	AircraftMovements   FieldKey = "Aircraft_Movements"
	AirportFootfalls    FieldKey = "Airport_Footfalls"
)

// Fields is the canonical field order. The positional tier maps numbers onto
// unresolved fields in exactly this order, so it must not be derived from map
// iteration.
var Fields = []FieldKey{
	DepartingFlights,
	DepartingPassengers,
	ArrivingFlights,
	ArrivingPassengers,
	AircraftMovements,
	AirportFootfalls,
}

// ParseFieldKey returns the FieldKey named by s (case-insensitive).
func ParseFieldKey(s string) (FieldKey, bool) {
	s = strings.TrimSpace(s)
	for _, k := range Fields {
		if strings.EqualFold(string(k), s) {
			return k, true
		}
	}
	return "", false
}

// Tier is one level of the extraction cascade.
type Tier int

const (
	TierLabeled Tier = iota + 1
	TierShaped
	TierPositional
)

func (t Tier) String() string {
	switch t {
	case TierLabeled:
		return "labeled"
	case TierShaped:
		return "shaped"
	case TierPositional:
		return "positional"
	default:
		return "tier(" + strconv.Itoa(int(t)) + ")"
	}
}

// Result is the outcome of one extraction. A field that no tier resolved is
// simply absent from Values; fewer than len(Fields) entries is a valid
// partial result.
type Result struct {
	Values map[FieldKey]int64
	// Sources records which tier resolved each field.
	Sources map[FieldKey]Tier
	// SectionScanned reports whether the positional tier found both section
	// markers in order and scanned the section between them.
	SectionScanned bool
	// SectionNumbers lists the grouped numbers found in the scanned section.
	SectionNumbers []string
}

func newResult() Result {
	return Result{
		Values:  make(map[FieldKey]int64, len(Fields)),
		Sources: make(map[FieldKey]Tier, len(Fields)),
	}
}

// Len returns the number of resolved fields.
func (r Result) Len() int { return len(r.Values) }

// Complete reports whether every field was resolved.
func (r Result) Complete() bool { return len(r.Values) == len(Fields) }

// Get returns the value for k and whether it was resolved.
func (r Result) Get(k FieldKey) (int64, bool) {
	v, ok := r.Values[k]
	return v, ok
}

// Missing returns the unresolved fields in canonical order.
func (r Result) Missing() []FieldKey {
	var out []FieldKey
	for _, k := range Fields {
		if _, ok := r.Values[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

func (r Result) resolve(k FieldKey, v int64, t Tier) {
	r.Values[k] = v
	r.Sources[k] = t
}
