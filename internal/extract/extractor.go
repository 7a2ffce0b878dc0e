package extract

import "fmt"

// Extractor turns a decoded response body into page text.
type Extractor interface {
	Extract(body string) Document
}

// RawExtractor passes the body through untouched, markup included. Label
// patterns tolerate interleaved tags, and this is how the aviation page has
// always been matched.
type RawExtractor struct{}

func (RawExtractor) Extract(body string) Document {
	return Document{Text: NormalizeText(body)}
}

// HeuristicExtractor strips markup with FromHTML before normalizing.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(body string) Document {
	doc := FromHTML([]byte(body))
	doc.Text = NormalizeText(doc.Text)
	return doc
}

// ForSource returns the extractor named by source: "raw" or "text".
func ForSource(source string) (Extractor, error) {
	switch source {
	case "", "raw":
		return RawExtractor{}, nil
	case "text":
		return HeuristicExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown text source %q (want raw or text)", source)
	}
}
