package page

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/use-agent/scrapeui/models"
	"golang.org/x/net/html"
)

type pseudoKind int

const (
	pseudoNone pseudoKind = iota
	pseudoText
	pseudoAttr
)

// cssGroup is one comma-separated part of a selector with its optional
// trailing pseudo-element.
type cssGroup struct {
	base string
	kind pseudoKind
	attr string
}

var reAttrPseudo = regexp.MustCompile(`::attr\(\s*(.*?)\s*\)\s*$`)

// CSS runs a CSS selector against the page. Each comma-separated group may
// end in ::text (direct child text nodes of every match) or ::attr(name)
// (the named attribute of every match). Results of all groups come back in
// document order without duplicates.
func (p *Page) CSS(selector string) ([]Node, error) {
	groups, err := parseGroups(selector)
	if err != nil {
		return nil, err
	}

	type hit struct {
		pos  int
		sub  int // 0 for nodes, attribute index + 1 for attribute values
		node Node
	}
	type hitKey struct{ pos, sub int }

	seen := make(map[hitKey]struct{})
	var hits []hit
	add := func(pos, sub int, node Node) {
		k := hitKey{pos, sub}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		hits = append(hits, hit{pos: pos, sub: sub, node: node})
	}

	for _, g := range groups {
		sel, err := cascadia.Compile(g.base)
		if err != nil {
			return nil, models.NewScrapeError(models.ErrCodeQuery,
				fmt.Sprintf("invalid CSS selector %q", selector), err)
		}
		for _, n := range sel.MatchAll(p.root) {
			switch g.kind {
			case pseudoText:
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						add(p.position(c), 0, TextNode{data: c.Data})
					}
				}
			case pseudoAttr:
				for i, a := range n.Attr {
					if a.Namespace == "" && a.Key == g.attr {
						add(p.position(n), i+1, Value{data: a.Val})
						break
					}
				}
			default:
				add(p.position(n), 0, Element{n: n})
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].pos != hits[j].pos {
			return hits[i].pos < hits[j].pos
		}
		return hits[i].sub < hits[j].sub
	})
	nodes := make([]Node, len(hits))
	for i, h := range hits {
		nodes[i] = h.node
	}
	return nodes, nil
}

// parseGroups splits a selector on top-level commas and peels off any
// ::text or ::attr(name) suffix from each part.
func parseGroups(selector string) ([]cssGroup, error) {
	parts := splitTopLevel(selector)
	groups := make([]cssGroup, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, models.NewScrapeError(models.ErrCodeQuery,
				fmt.Sprintf("invalid CSS selector %q: empty group", selector), nil)
		}

		g := cssGroup{base: part}
		switch {
		case strings.HasSuffix(part, "::text"):
			g.kind = pseudoText
			g.base = strings.TrimSuffix(part, "::text")
		case reAttrPseudo.MatchString(part):
			m := reAttrPseudo.FindStringSubmatchIndex(part)
			g.kind = pseudoAttr
			g.attr = strings.ToLower(strings.Trim(part[m[2]:m[3]], `"'`))
			g.base = part[:m[0]]
			if g.attr == "" {
				return nil, models.NewScrapeError(models.ErrCodeQuery,
					fmt.Sprintf("invalid CSS selector %q: empty attribute name", selector), nil)
			}
		}
		g.base = strings.TrimSpace(g.base)
		if g.base == "" {
			g.base = "*"
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// splitTopLevel splits s on commas that are not nested inside brackets,
// parentheses or quotes.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
