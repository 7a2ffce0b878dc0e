package stats

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
	yaml "gopkg.in/yaml.v3"
)

// Pattern is one labeled expression tried by the first tier. The expression
// must have exactly one capture group holding the candidate number.
type Pattern struct {
	Locale string
	Expr   *regexp.Regexp
}

// FieldPatterns holds the expressions used for a single field.
type FieldPatterns struct {
	// Labeled are tried in order; the first accepted capture wins.
	Labeled []Pattern
	// Shaped requires the locale's digit-grouping shape. May be nil.
	Shaped *regexp.Regexp
}

// Profile is the full pattern table the Extractor runs against. Profiles are
// immutable after construction and safe to share.
type Profile struct {
	Fields map[FieldKey]FieldPatterns

	// SectionStart and SectionEnd delimit the bounded section scanned by the
	// positional tier. Both are matched case-sensitively, first occurrence.
	SectionStart string
	SectionEnd   string
	// SectionNumber matches one grouped number inside the section.
	SectionNumber *regexp.Regexp

	// Separators are the digit-group separators stripped from captures.
	Separators string
}

const (
	// labeledTail follows a label up to the nearest run of digits and separators.
	labeledTail = `[^0-9]*(\d[\d,]*)`
	// Indian grouping: thousands for flights and movements, lakhs for passengers.
	shapeSmall = `(\d{1,2},\d{2,3})`
	shapeLarge = `(\d{1,2},\d{2},\d{3})`

	defaultSectionNumber = `\d{1,2},\d{2,3}(?:,\d{3})*`
)

type labelSet struct {
	key   FieldKey
	en    string
	hi    string
	shape string
}

var defaultLabels = []labelSet{
	{DepartingFlights, "Departing flights", "प्रस्थान उड़ानें", shapeSmall},
	{DepartingPassengers, "Departing Pax", "प्रस्थान यात्री", shapeLarge},
	{ArrivingFlights, "Arriving flights", "आगमन उड़ानें", shapeSmall},
	{ArrivingPassengers, "Arriving Pax", "आगमन यात्री", shapeLarge},
	{AircraftMovements, "Aircraft movements", "विमानों की कुल आवाजाही", shapeSmall},
	{AirportFootfalls, "Airport footfalls", "हवाई अड्डों पर कुल फुटफॉल", shapeLarge},
}

// DefaultProfile returns the English/Hindi profile for the civil aviation
// ministry home page.
func DefaultProfile() *Profile {
	p := &Profile{
		Fields:        make(map[FieldKey]FieldPatterns, len(Fields)),
		SectionStart:  "Domestic traffic",
		SectionEnd:    "International traffic",
		SectionNumber: regexp.MustCompile(defaultSectionNumber),
		Separators:    ",",
	}
	for _, l := range defaultLabels {
		p.Fields[l.key] = FieldPatterns{
			Labeled: []Pattern{
				{Locale: "en", Expr: mustCompileFold(regexp.QuoteMeta(l.en) + labeledTail)},
				{Locale: "hi", Expr: mustCompileFold(regexp.QuoteMeta(l.hi) + labeledTail)},
			},
			Shaped: mustCompileFold(regexp.QuoteMeta(l.en) + `[^0-9]*` + l.shape),
		}
	}
	return p
}

// Labels and text are both compared in NFC; Devanagari nukta letters are
// composition exclusions, so a label typed precomposed would otherwise never
// match normalized page text.
func mustCompileFold(expr string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + norm.NFC.String(expr))
}

func compileFold(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + norm.NFC.String(expr))
	if err != nil {
		return nil, err
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("pattern %q has no capture group", expr)
	}
	return re, nil
}

// profileFile is the YAML schema accepted by LoadProfile.
type profileFile struct {
	Fields []struct {
		Key    string `yaml:"key"`
		Labels []struct {
			Locale  string `yaml:"locale"`
			Label   string `yaml:"label"`
			Pattern string `yaml:"pattern"`
		} `yaml:"labels"`
		// Shape is a grouping shape with one capture group, appended to the
		// first label; Shaped overrides it with a complete expression.
		Shape  string `yaml:"shape"`
		Shaped string `yaml:"shaped"`
	} `yaml:"fields"`
	Section struct {
		Start  string `yaml:"start"`
		End    string `yaml:"end"`
		Number string `yaml:"number"`
	} `yaml:"section"`
	Separators string `yaml:"separators"`
}

// LoadProfile reads a YAML profile. Fields missing from the file keep no
// patterns and can only be resolved positionally; section settings missing
// from the file fall back to the default profile's.
func LoadProfile(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProfile(b)
}

// ParseProfile parses a YAML profile document.
func ParseProfile(data []byte) (*Profile, error) {
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	def := DefaultProfile()
	p := &Profile{
		Fields:        make(map[FieldKey]FieldPatterns, len(Fields)),
		SectionStart:  norm.NFC.String(pickNonEmpty(pf.Section.Start, def.SectionStart)),
		SectionEnd:    norm.NFC.String(pickNonEmpty(pf.Section.End, def.SectionEnd)),
		SectionNumber: def.SectionNumber,
		Separators:    pickNonEmpty(pf.Separators, def.Separators),
	}
	if s := strings.TrimSpace(pf.Section.Number); s != "" {
		re, err := regexp.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("section number: %w", err)
		}
		p.SectionNumber = re
	}
	for _, f := range pf.Fields {
		key, ok := ParseFieldKey(f.Key)
		if !ok {
			return nil, fmt.Errorf("unknown field %q", f.Key)
		}
		if _, dup := p.Fields[key]; dup {
			return nil, fmt.Errorf("field %q listed twice", key)
		}
		var fp FieldPatterns
		for _, l := range f.Labels {
			expr := strings.TrimSpace(l.Pattern)
			if expr == "" {
				if strings.TrimSpace(l.Label) == "" {
					return nil, fmt.Errorf("field %s: label or pattern required", key)
				}
				expr = regexp.QuoteMeta(l.Label) + labeledTail
			}
			re, err := compileFold(expr)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			fp.Labeled = append(fp.Labeled, Pattern{Locale: l.Locale, Expr: re})
		}
		switch {
		case strings.TrimSpace(f.Shaped) != "":
			re, err := compileFold(f.Shaped)
			if err != nil {
				return nil, fmt.Errorf("field %s shaped: %w", key, err)
			}
			fp.Shaped = re
		case strings.TrimSpace(f.Shape) != "":
			if len(f.Labels) == 0 || strings.TrimSpace(f.Labels[0].Label) == "" {
				return nil, errors.New("field " + string(key) + ": shape needs a plain first label")
			}
			re, err := compileFold(regexp.QuoteMeta(f.Labels[0].Label) + `[^0-9]*` + f.Shape)
			if err != nil {
				return nil, fmt.Errorf("field %s shape: %w", key, err)
			}
			fp.Shaped = re
		}
		p.Fields[key] = fp
	}
	return p, nil
}

func pickNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
