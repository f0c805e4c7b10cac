package page

import (
	"fmt"
	"strconv"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/use-agent/scrapeui/models"
)

// XPath evaluates an XPath expression against the page. Node-set results
// come back in document order; scalar results (string(), count(), ...)
// come back as a single Value.
func (p *Page) XPath(expr string) ([]Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeQuery,
			fmt.Sprintf("invalid XPath expression %q", expr), err)
	}

	switch res := compiled.Evaluate(htmlquery.CreateXPathNavigator(p.root)).(type) {
	case *xpath.NodeIterator:
		var nodes []Node
		for res.MoveNext() {
			nav, ok := res.Current().(*htmlquery.NodeNavigator)
			if !ok {
				continue
			}
			switch nav.NodeType() {
			case xpath.AttributeNode:
				nodes = append(nodes, Value{data: nav.Value()})
			case xpath.TextNode, xpath.CommentNode:
				nodes = append(nodes, TextNode{data: nav.Value()})
			default:
				nodes = append(nodes, Element{n: nav.Current()})
			}
		}
		return nodes, nil
	case string:
		return []Node{Value{data: res}}, nil
	case float64:
		return []Node{Value{data: strconv.FormatFloat(res, 'f', -1, 64)}}, nil
	case bool:
		return []Node{Value{data: strconv.FormatBool(res)}}, nil
	default:
		return nil, models.NewScrapeError(models.ErrCodeQuery,
			fmt.Sprintf("unsupported XPath result type %T", res), nil)
	}
}
