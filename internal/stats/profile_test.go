package stats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultProfile_CoversAllFields(t *testing.T) {
	p := DefaultProfile()
	for _, k := range Fields {
		fp, ok := p.Fields[k]
		if !ok {
			t.Fatalf("missing patterns for %s", k)
		}
		if len(fp.Labeled) != 2 || fp.Labeled[0].Locale != "en" || fp.Labeled[1].Locale != "hi" {
			t.Fatalf("%s: expected en then hi labeled patterns, got %+v", k, fp.Labeled)
		}
		if fp.Shaped == nil {
			t.Fatalf("%s: missing shaped pattern", k)
		}
	}
}

func TestLoadProfile_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	doc := `
fields:
  - key: departing_flights
    labels:
      - {locale: en, label: "Flights out"}
section:
  start: "== domestic =="
  end: "== international =="
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.SectionStart != "== domestic ==" || p.SectionEnd != "== international ==" {
		t.Fatalf("unexpected markers %q %q", p.SectionStart, p.SectionEnd)
	}
	if p.Separators != "," || p.SectionNumber == nil {
		t.Fatalf("expected defaults for separators and section number")
	}
	res := New(p).Extract("flights OUT ... 4,321\n== domestic == 1,111 2,22,222 == international ==")
	if v, _ := res.Get(DepartingFlights); v != 4321 {
		t.Fatalf("departing flights=%d, want 4321", v)
	}
	if v, _ := res.Get(DepartingPassengers); v != 1111 {
		t.Fatalf("departing pax=%d, want positional 1111", v)
	}
	if v, _ := res.Get(ArrivingFlights); v != 222222 {
		t.Fatalf("arriving flights=%d, want positional 222222", v)
	}
}

func TestParseProfile_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "fields: [{key: Cargo_Tonnes, labels: [{label: Cargo}]}]",
		"duplicate key":   "fields: [{key: Departing_Flights, labels: [{label: a}]}, {key: Departing_Flights, labels: [{label: b}]}]",
		"empty label":     "fields: [{key: Departing_Flights, labels: [{locale: en}]}]",
		"bad regexp":      "fields: [{key: Departing_Flights, labels: [{pattern: 'a(('}]}]",
		"no capture":      "fields: [{key: Departing_Flights, labels: [{pattern: 'Departing \\d+'}]}]",
		"bad section":     "section: {number: '(('}",
		"shape w/o label": "fields: [{key: Departing_Flights, labels: [{pattern: 'x(\\d+)'}], shape: '(\\d+)'}]",
		"not yaml":        "fields: [",
	}
	for name, doc := range cases {
		if _, err := ParseProfile([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseFieldKey(t *testing.T) {
	if k, ok := ParseFieldKey(" airport_FOOTFALLS "); !ok || k != AirportFootfalls {
		t.Fatalf("got %q ok=%v", k, ok)
	}
	if _, ok := ParseFieldKey("Cargo"); ok {
		t.Fatalf("unexpected key")
	}
	if strings.Join(keysToStrings(Fields), ",") != "Departing_Flights,Departing_Passengers,Arriving_Flights,Arriving_Passengers,Aircraft_Movements,Airport_Footfalls" {
		t.Fatalf("canonical order changed: %v", Fields)
	}
}

func keysToStrings(keys []FieldKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
