package scrape

import (
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// dropped elements are removed with their whole subtree.
var dropped = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Nav:    true,
	atom.Footer: true,
	atom.Header: true,
}

// StripText returns the document's text nodes separated by spaces, leaving
// out script, style, nav, footer and header content.
func StripText(doc string, _ *url.URL) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && dropped[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return b.String(), nil
}

// ReadabilityText keeps only the main article body as judged by readability.
func ReadabilityText(doc string, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(strings.NewReader(doc), pageURL)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}
