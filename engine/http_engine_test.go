package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/scrapeui/models"
)

func TestHTTPEngine_SendsBrowserHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><p>ok</p></body></html>"))
	}))
	defer srv.Close()

	res, err := NewHTTPEngine("", 0).Fetch(context.Background(), srv.URL, models.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.StatusCode != http.StatusOK || res.EngineName != models.StrategyFetcher {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(res.HTML, "<p>ok</p>") {
		t.Errorf("HTML = %q", res.HTML)
	}

	if ua := got.Get("User-Agent"); !strings.Contains(ua, "Chrome/") {
		t.Errorf("User-Agent = %q", ua)
	}
	if ref := got.Get("Referer"); ref != "https://www.google.com/search?q=127.0.0.1" {
		t.Errorf("Referer = %q", ref)
	}
	if got.Get("Sec-Ch-Ua") == "" || got.Get("Sec-Fetch-Mode") != "navigate" {
		t.Errorf("client hints missing: %v", got)
	}
}

func TestHTTPEngine_NonSuccessStillReturnsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<html><body><h1>Not here</h1></body></html>"))
	}))
	defer srv.Close()

	res, err := NewHTTPEngine("", 0).Fetch(context.Background(), srv.URL, models.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.StatusCode != http.StatusNotFound || !strings.Contains(res.HTML, "Not here") {
		t.Errorf("result = %+v", res)
	}
}

func TestHTTPEngine_DecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<p>caf\xe9</p>"))
	}))
	defer srv.Close()

	res, err := NewHTTPEngine("", 0).Fetch(context.Background(), srv.URL, models.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(res.HTML, "café") {
		t.Errorf("HTML = %q, want UTF-8 café", res.HTML)
	}
}

func TestHTTPEngine_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	res, err := NewHTTPEngine("", 16).Fetch(context.Background(), srv.URL, models.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.HTML) != 16 {
		t.Errorf("len(HTML) = %d, want 16", len(res.HTML))
	}
}

func TestHTTPEngine_DeadlineIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPEngine("", 0).Fetch(ctx, srv.URL, models.FetchOptions{Timeout: 10})
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeTimeout {
		t.Errorf("err = %v, want %s", err, models.ErrCodeTimeout)
	}
}

func TestHTTPEngine_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewHTTPEngine("", 0).Fetch(context.Background(), addr, models.FetchOptions{})
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeNavigation {
		t.Errorf("err = %v, want %s", err, models.ErrCodeNavigation)
	}
}

func TestHTTPEngine_ClientTimeoutFromOptions(t *testing.T) {
	e := NewHTTPEngine("http://127.0.0.1:3128", 0)
	tests := []struct {
		timeout int
		want    time.Duration
	}{
		{0, 30 * time.Second},
		{5, 10 * time.Second},
		{45, 45 * time.Second},
		{600, 60 * time.Second},
	}
	for _, tt := range tests {
		opts := models.FetchOptions{Timeout: tt.timeout}
		c := e.newClient(time.Duration(opts.TimeoutOrDefault()) * time.Second)
		if c.Timeout != tt.want {
			t.Errorf("timeout %d: client timeout = %s, want %s", tt.timeout, c.Timeout, tt.want)
		}
		tr := c.Transport.(*http.Transport)
		if !tr.DisableKeepAlives || tr.Proxy == nil {
			t.Errorf("transport = %+v", tr)
		}
	}
}
