package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Document is the readable text of a fetched page.
type Document struct {
	Title string
	Text  string
}

// FromHTML flattens an HTML page into text, one block element per line.
// Unlike an article extractor it keeps the whole <body>: statistics widgets on
// portal home pages tend to sit outside <main>. Scripts, styles and consent
// banners are dropped; table cells on one row stay on one line.
func FromHTML(input []byte) Document {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return Document{}
	}

	title := strings.TrimSpace(findTitle(node))
	root := findFirst(node, "body")
	if root == nil {
		root = node
	}
	var b strings.Builder
	collectText(&b, root)
	return Document{Title: title, Text: normalizeWhitespace(b.String())}
}

func findTitle(n *html.Node) string {
	t := findFirst(n, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"header": true, "footer": true, "aside": true, "nav": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "tr": true, "table": true,
	"br": true, "hr": true, "dt": true, "dd": true, "pre": true,
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		if isBoilerplateContainer(n) {
			return
		}
		name := strings.ToLower(n.Data)
		switch name {
		case "script", "style", "noscript", "template", "iframe", "svg":
			return
		case "td", "th":
			b.WriteString(" ")
		}
		if blockTags[name] {
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}

	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		switch {
		case name == "td" || name == "th":
			b.WriteString(" ")
		case blockTags[name]:
			b.WriteString("\n")
		}
	}
}

// isBoilerplateContainer reports elements that look like cookie or consent banners.
func isBoilerplateContainer(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && key != "role" && key != "aria-label" {
			continue
		}
		val := strings.ToLower(attr.Val)
		if strings.Contains(val, "cookie") || strings.Contains(val, "consent") || strings.Contains(val, "gdpr") {
			return true
		}
	}
	return false
}

// normalizeWhitespace collapses runs of spaces inside lines and keeps at most
// one blank line between blocks.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if len(out) == 0 || out[len(out)-1] == "" {
				continue
			}
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
