package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

// DecodeBody converts a response body to UTF-8 using the charset declared in
// contentType or sniffed from the document itself.
func DecodeBody(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("charset: %w", err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	return string(b), nil
}

// Zero code points of the decimal digit blocks folded to ASCII.
var digitZeros = []rune{
	0x0660, // Arabic-Indic
	0x06F0, // Extended Arabic-Indic
	0x0966, // Devanagari
	0x09E6, // Bengali
	0x0A66, // Gurmukhi
	0x0AE6, // Gujarati
	0x0B66, // Oriya
	0x0BE6, // Tamil
	0x0C66, // Telugu
	0x0CE6, // Kannada
	0x0D66, // Malayalam
	0xFF10, // Fullwidth
}

// NormalizeText puts page text in NFC and folds native decimal digits to
// ASCII so that digit patterns see Hindi-page numerals as ordinary numbers.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	if isASCII(s) {
		return s
	}
	return strings.Map(foldDigit, s)
}

func foldDigit(r rune) rune {
	if r < 0x0660 {
		return r
	}
	for _, z := range digitZeros {
		if r >= z && r <= z+9 {
			return '0' + (r - z)
		}
	}
	return r
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
