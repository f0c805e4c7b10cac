package page

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Node is a single query result: an element, a text node, or an attribute
// value. Every node converts to a string; richer capabilities are exposed
// through Texter and HTMLer.
type Node interface {
	String() string
}

// Texter is implemented by nodes that carry text content.
type Texter interface {
	Text() string
}

// HTMLer is implemented by nodes that can render their markup.
type HTMLer interface {
	HTML() string
}

// Element is a matched element (or document) node.
type Element struct {
	n *html.Node
}

// Text returns the concatenated text of the element and its descendants.
func (e Element) Text() string {
	return goquery.NewDocumentFromNode(e.n).Text()
}

// HTML returns the outer HTML of the element.
func (e Element) HTML() string {
	var buf bytes.Buffer
	if e.n.Type == html.DocumentNode {
		for c := e.n.FirstChild; c != nil; c = c.NextSibling {
			_ = html.Render(&buf, c)
		}
		return buf.String()
	}
	if err := html.Render(&buf, e.n); err != nil {
		return ""
	}
	return buf.String()
}

func (e Element) String() string { return e.HTML() }

// TextNode is a DOM text (or comment) node selected with ::text or text().
type TextNode struct {
	data string
}

func (t TextNode) Text() string   { return t.data }
func (t TextNode) String() string { return t.data }

// Value is an attribute value or a scalar XPath result. It only converts
// to a string.
type Value struct {
	data string
}

func (v Value) String() string { return v.data }

var (
	_ Texter = Element{}
	_ HTMLer = Element{}
	_ Texter = TextNode{}
)
