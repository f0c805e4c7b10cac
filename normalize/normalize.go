// Package normalize turns query results into flat records.
package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/use-agent/scrapeui/models"
	"github.com/use-agent/scrapeui/page"
)

// PreviewLength is the maximum number of characters kept in the html field.
const PreviewLength = 200

// Querier is the query capability of a fetched page.
type Querier interface {
	CSS(selector string) ([]page.Node, error)
	XPath(expr string) ([]page.Node, error)
}

// Mode is the extraction rule applied to every node of one call.
type Mode int

const (
	// ModeNode emits {text, html} per node.
	ModeNode Mode = iota
	// ModeText emits {text} per node with non-blank text.
	ModeText
	// ModeAttr emits {value} per node.
	ModeAttr
)

// ModeFor picks the extraction rule from the selector string. ::text is
// checked before ::attr(, so a selector carrying both yields text.
func ModeFor(selector string) Mode {
	switch {
	case strings.Contains(selector, "::text"):
		return ModeText
	case strings.Contains(selector, "::attr("):
		return ModeAttr
	default:
		return ModeNode
	}
}

// Normalize runs selector against q and converts every returned node into a
// Record, preserving query order. An empty match set yields an empty slice.
func Normalize(q Querier, selector string, lang models.SelectorType) ([]models.Record, error) {
	var (
		nodes []page.Node
		err   error
	)
	if lang == models.SelectorCSS {
		nodes, err = q.CSS(selector)
	} else {
		nodes, err = q.XPath(selector)
	}
	if err != nil {
		return nil, err
	}

	mode := ModeFor(selector)
	records := make([]models.Record, 0, len(nodes))
	for _, n := range nodes {
		switch mode {
		case ModeText:
			if text := strings.TrimSpace(textOf(n)); text != "" {
				records = append(records, models.Record{models.FieldText: text})
			}
		case ModeAttr:
			records = append(records, models.Record{models.FieldValue: n.String()})
		default:
			var text string
			if t, ok := n.(page.Texter); ok {
				text = strings.TrimSpace(t.Text())
			}
			markup := n.String()
			if h, ok := n.(page.HTMLer); ok {
				markup = h.HTML()
			}
			records = append(records, models.Record{
				models.FieldText: text,
				models.FieldHTML: Truncate(markup, PreviewLength),
			})
		}
	}
	return records, nil
}

func textOf(n page.Node) string {
	if t, ok := n.(page.Texter); ok {
		return t.Text()
	}
	return n.String()
}

// Truncate returns the first max characters (runes) of s.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	i := 0
	for pos := range s {
		if i == max {
			return s[:pos]
		}
		i++
	}
	return s
}
