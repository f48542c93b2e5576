package scraper

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultRadius is the number of markup bytes taken on each side of a candidate.
const DefaultRadius = 200

// Page is a fetched fixture page: the raw markup and its plain-text projection
// (one line per non-empty text node).
type Page struct {
	Markup string
	Text   string
}

// NewPage parses markup and builds its plain-text projection.
func NewPage(markup string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML")
	}
	return &Page{
		Markup: markup,
		Text:   strings.Join(textNodes(doc.Selection), "\n"),
	}, nil
}

// Neighbors returns the plain text around the first occurrence of substr in
// markup: radius bytes on each side, clamped to the document and widened to
// whole UTF-8 sequences, with tags stripped and whitespace collapsed.
// It returns "" when substr does not occur.
func Neighbors(markup, substr string, radius int) string {
	if substr == "" {
		return ""
	}
	idx := strings.Index(markup, substr)
	if idx < 0 {
		return ""
	}

	start := max(0, idx-radius)
	end := min(len(markup), idx+len(substr)+radius)
	for start > 0 && !utf8.RuneStart(markup[start]) {
		start--
	}
	for end < len(markup) && !utf8.RuneStart(markup[end]) {
		end++
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup[start:end]))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(strings.Join(textNodes(doc.Selection), " ")), " ")
}

// textNodes collects the trimmed, non-empty text nodes under sel in document
// order. Script, style and template bodies and comments are not text.
func textNodes(sel *goquery.Selection) []string {
	var out []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				out = append(out, s)
			}
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Template:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}
	return out
}
