// Package page wraps a fetched HTML document and exposes CSS and XPath
// query capabilities that return a uniform sequence of nodes.
package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is the parsed result of one fetch. It is created per call and
// discarded after normalization.
type Page struct {
	// URL is the final URL after redirects.
	URL string

	// StatusCode is the HTTP status reported by the strategy (0 if unknown).
	StatusCode int

	root  *html.Node
	doc   *goquery.Document
	order map[*html.Node]int // document position, built lazily
}

// Parse builds a Page from raw HTML.
func Parse(rawHTML, url string, statusCode int) (*Page, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	return &Page{
		URL:        url,
		StatusCode: statusCode,
		root:       root,
		doc:        goquery.NewDocumentFromNode(root),
	}, nil
}

// Title returns the trimmed <title> text, if any.
func (p *Page) Title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

// position returns the pre-order index of n in the document.
func (p *Page) position(n *html.Node) int {
	if p.order == nil {
		p.order = make(map[*html.Node]int)
		i := 0
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			p.order[n] = i
			i++
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		walk(p.root)
	}
	return p.order[n]
}
