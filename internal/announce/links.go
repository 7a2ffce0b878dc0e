package announce

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is a PDF attachment in the results table.
type Link struct {
	URL     string
	RowText string
}

// pdfIcon marks attachment anchors in the announcement results table.
const pdfIcon = "i.fa-file-pdf-o"

// FindPDFLinks returns attachment links whose table row mentions any of the
// keywords, case-insensitively, in document order. Relative hrefs are
// resolved against base.
func FindPDFLinks(page, base string, keywords []string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var links []Link
	doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ChildrenFiltered(pdfIcon).Length() > 0
	}).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		row := strings.Join(strings.Fields(s.Closest("tr").Text()), " ")
		if !containsAny(strings.ToLower(row), keywords) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, Link{URL: baseURL.ResolveReference(ref).String(), RowText: row})
	})
	return links, nil
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
