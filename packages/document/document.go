// Package document is the read-only DOM view the extractors query. It keeps
// goquery out of the extraction logic.
package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

type Element interface {
	Attr(name string) (string, bool)
	// Text returns the element's visible strings, each trimmed, joined by single spaces.
	Text() string
}

type Document interface {
	// Select returns matches in document order. An invalid selector matches nothing.
	Select(selector string) []Element
	// Scripts returns the raw bodies of <script type="mimeType"> blocks.
	Scripts(mimeType string) []string
	Title() (string, bool)
	Text() string
}

type htmlDocument struct {
	doc *goquery.Document
}

type element struct {
	sel *goquery.Selection
}

func Parse(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &htmlDocument{doc: doc}, nil
}

func ParseString(s string) (Document, error) {
	return Parse(strings.NewReader(s))
}

func (d *htmlDocument) Select(selector string) []Element {
	var out []Element
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, element{sel: s})
	})
	return out
}

func (d *htmlDocument) Scripts(mimeType string) []string {
	var out []string
	d.doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		typ, ok := s.Attr("type")
		if !ok || typ != mimeType {
			return
		}
		out = append(out, s.Text())
	})
	return out
}

func (d *htmlDocument) Title() (string, bool) {
	title := d.doc.Find("title").First()
	if title.Length() == 0 {
		return "", false
	}
	text := visibleText(title.Nodes)
	return text, text != ""
}

func (d *htmlDocument) Text() string {
	return visibleText(d.doc.Nodes)
}

func (e element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e element) Text() string {
	return visibleText(e.sel.Nodes)
}

// visibleText mirrors what a reader sees: script-like containers are skipped
// and every text node is trimmed before joining.
func visibleText(nodes []*html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			switch strings.ToLower(n.Data) {
			case "script", "style", "noscript", "template":
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
