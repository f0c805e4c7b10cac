package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/use-agent/scrapeui/api/middleware"
	"github.com/use-agent/scrapeui/models"
)

func TestScrapePage_ReusesSession(t *testing.T) {
	var issued int
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(middleware.SessionCookie); err == nil {
			seen = append(seen, c.Value)
		} else {
			issued++
			http.SetCookie(w, &http.Cookie{Name: middleware.SessionCookie, Value: "sess-1", Path: "/"})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.ScrapeResponse{
			ScrapeOutcome: models.Succeeded([]models.Record{{"value": "/a"}}),
			Count:         1,
		})
	}))
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	handler := handleScrapePage(srv.URL, jar)

	for i := 0; i < 3; i++ {
		req := mcp.CallToolRequest{}
		req.Params.Name = "scrape_page"
		req.Params.Arguments = map[string]any{"url": "https://example.com", "selector": "a::attr(href)"}
		res, err := handler(context.Background(), req)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if res.IsError {
			t.Fatalf("call %d returned a tool error: %+v", i, res.Content)
		}
	}

	if issued != 1 {
		t.Errorf("sessions issued = %d, want 1", issued)
	}
	if len(seen) != 2 || seen[0] != "sess-1" || seen[1] != "sess-1" {
		t.Errorf("cookies sent back = %v, want [sess-1 sess-1]", seen)
	}
}
