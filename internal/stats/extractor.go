package stats

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// strategy resolves some of the unresolved fields from text. Strategies only
// add to the result; a field resolved earlier is never revisited.
type strategy struct {
	tier Tier
	run  func(p *Profile, text string, unresolved []FieldKey, res *Result)
}

var cascade = []strategy{
	{TierLabeled, labeled},
	{TierShaped, shaped},
	{TierPositional, positional},
}

// Extractor runs the three-tier cascade. It holds no per-call state and is
// safe for concurrent use.
type Extractor struct {
	profile *Profile
}

// New returns an Extractor for p. A nil profile selects DefaultProfile.
func New(p *Profile) *Extractor {
	if p == nil {
		p = DefaultProfile()
	}
	return &Extractor{profile: p}
}

// Extract never fails: fields that no tier can resolve are left out of the
// result.
func (e *Extractor) Extract(text string) Result {
	text = norm.NFC.String(text)
	res := newResult()
	for _, s := range cascade {
		unresolved := res.Missing()
		if len(unresolved) == 0 {
			break
		}
		s.run(e.profile, text, unresolved, &res)
	}
	return res
}

// Extract runs the default profile over text.
func Extract(text string) Result {
	return New(nil).Extract(text)
}

func labeled(p *Profile, text string, unresolved []FieldKey, res *Result) {
	for _, k := range unresolved {
		for _, pat := range p.Fields[k].Labeled {
			m := pat.Expr.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if v, ok := p.parseCount(m[1]); ok {
				res.resolve(k, v, TierLabeled)
				break
			}
		}
	}
}

func shaped(p *Profile, text string, unresolved []FieldKey, res *Result) {
	for _, k := range unresolved {
		re := p.Fields[k].Shaped
		if re == nil {
			continue
		}
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := p.parseCount(m[1]); ok {
			res.resolve(k, v, TierShaped)
		}
	}
}

// positional is a best-effort fallback: it assumes the unresolved fields
// appear in canonical order inside the section and does not validate that.
func positional(p *Profile, text string, unresolved []FieldKey, res *Result) {
	if p.SectionNumber == nil || p.SectionStart == "" || p.SectionEnd == "" {
		return
	}
	start := strings.Index(text, p.SectionStart)
	end := strings.Index(text, p.SectionEnd)
	if start < 0 || end < 0 || start >= end {
		return
	}
	res.SectionScanned = true
	res.SectionNumbers = p.SectionNumber.FindAllString(text[start:end], -1)

	// Number i belongs to unresolved field i. A number that does not parse
	// still uses up its slot.
	for i, k := range unresolved {
		if i >= len(res.SectionNumbers) {
			break
		}
		if v, ok := p.parseCount(res.SectionNumbers[i]); ok {
			res.resolve(k, v, TierPositional)
		}
	}
}

// parseCount strips group separators and accepts the capture only when what
// remains is a non-empty run of ASCII digits that fits in an int64.
func (p *Profile) parseCount(s string) (int64, bool) {
	seps := p.Separators
	if seps == "" {
		seps = ","
	}
	digits := strings.Map(func(r rune) rune {
		if strings.ContainsRune(seps, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
