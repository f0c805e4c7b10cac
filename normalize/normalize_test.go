package normalize

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/use-agent/scrapeui/models"
	"github.com/use-agent/scrapeui/page"
)

func parse(t *testing.T, body string) *page.Page {
	t.Helper()
	p, err := page.Parse("<html><body>"+body+"</body></html>", "https://example.com", 200)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return p
}

func TestModeFor(t *testing.T) {
	tests := []struct {
		selector string
		want     Mode
	}{
		{"p::text", ModeText},
		{"a::attr(href)", ModeAttr},
		{"a::attr(href)::text", ModeText},
		{"div.content", ModeNode},
		{"//a/@href", ModeNode},
	}
	for _, tt := range tests {
		if got := ModeFor(tt.selector); got != tt.want {
			t.Errorf("ModeFor(%q) = %v, want %v", tt.selector, got, tt.want)
		}
	}
}

func TestNormalize_Text(t *testing.T) {
	p := parse(t, `<p>  Hello  </p><p>   </p><p>World</p>`)
	got, err := Normalize(p, "p::text", models.SelectorCSS)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []models.Record{{"text": "Hello"}, {"text": "World"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalize_TextOnElementGroup(t *testing.T) {
	// Only the last group carries ::text; the h1 and h2 groups match
	// elements and contribute their full descendant text.
	p := parse(t, `<h1>Main <b>title</b></h1><h2>Sub</h2><h3>Third <i>skipped</i></h3>`)
	got, err := Normalize(p, "h1, h2, h3::text", models.SelectorCSS)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []models.Record{{"text": "Main title"}, {"text": "Sub"}, {"text": "Third"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalize_Attr(t *testing.T) {
	p := parse(t, `<a href=" /a ">a</a><a href="">empty</a><a>none</a>`)
	got, err := Normalize(p, "a::attr(href)", models.SelectorCSS)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	// No trimming and no filtering of empty values.
	want := []models.Record{{"value": " /a "}, {"value": ""}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalize_Node(t *testing.T) {
	long := strings.Repeat("é", 300)
	p := parse(t, `<div class="c"> Short <b>text</b> </div><div class="c">`+long+`</div><div class="c"></div>`)
	got, err := Normalize(p, "div.c", models.SelectorCSS)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	if got[0]["text"] != "Short text" {
		t.Errorf("text = %q", got[0]["text"])
	}
	if got[0]["html"] != `<div class="c"> Short <b>text</b> </div>` {
		t.Errorf("html = %q", got[0]["html"])
	}
	if n := utf8.RuneCountInString(got[1]["html"]); n != PreviewLength {
		t.Errorf("preview length = %d runes, want %d", n, PreviewLength)
	}
	if !strings.HasPrefix(got[1]["html"], `<div class="c">éé`) {
		t.Errorf("preview = %q", got[1]["html"][:40])
	}
	if got[2]["text"] != "" || got[2]["html"] != `<div class="c"></div>` {
		t.Errorf("empty element = %v", got[2])
	}
	for _, r := range got {
		if _, ok := r["value"]; ok {
			t.Errorf("node record carries value: %v", r)
		}
	}
}

func TestNormalize_XPath(t *testing.T) {
	p := parse(t, `<a href="/x">x</a><h1> Title </h1>`)

	// Attribute results carry no text capability, so text and html both
	// fall back to the value itself.
	got, err := Normalize(p, "//a/@href", models.SelectorXPath)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if want := []models.Record{{"text": "", "html": "/x"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("attr: got %v, want %v", got, want)
	}

	got, err = Normalize(p, "//h1/text()", models.SelectorXPath)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if want := []models.Record{{"text": "Title", "html": " Title "}}; !reflect.DeepEqual(got, want) {
		t.Errorf("text(): got %v, want %v", got, want)
	}
}

func TestNormalize_UnknownLanguageRoutesToXPath(t *testing.T) {
	p := parse(t, `<a href="/x">x</a>`)
	got, err := Normalize(p, "//a/@href", models.SelectorType("xpath"))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestNormalize_EmptyMatch(t *testing.T) {
	p := parse(t, `<p>x</p>`)
	for _, sel := range []string{"table", "table::text", "table::attr(id)"} {
		got, err := Normalize(p, sel, models.SelectorCSS)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", sel, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Normalize(%q) = %#v, want empty non-nil slice", sel, got)
		}
	}
}

type failingQuerier struct{}

var errQuery = errors.New("query failed")

func (failingQuerier) CSS(string) ([]page.Node, error)   { return nil, errQuery }
func (failingQuerier) XPath(string) ([]page.Node, error) { return nil, errQuery }

func TestNormalize_QueryError(t *testing.T) {
	if _, err := Normalize(failingQuerier{}, "p", models.SelectorCSS); !errors.Is(err, errQuery) {
		t.Errorf("err = %v, want %v", err, errQuery)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"héllo", 2, "hé"},
		{"", 3, ""},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
