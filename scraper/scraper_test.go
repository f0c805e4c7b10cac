package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/use-agent/scrapeui/models"
	"github.com/use-agent/scrapeui/page"
)

type fakeFetcher struct {
	html    string
	err     error
	panic   bool
	gotURL  string
	gotOpts models.FetchOptions
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, strategy models.Strategy, opts models.FetchOptions) (*page.Page, error) {
	f.gotURL, f.gotOpts = url, opts
	if f.panic {
		panic("selector engine exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	if !strategy.Valid() {
		return nil, models.NewScrapeError(models.ErrCodeUnknownStrategy,
			fmt.Sprintf("Unknown fetcher type: %s", strategy), nil)
	}
	return page.Parse(f.html, url, 200)
}

func request(selector string) *models.ScrapeRequest {
	req := &models.ScrapeRequest{URL: "https://example.com", Selector: selector}
	req.Defaults()
	return req
}

func assertFailure(t *testing.T, out models.ScrapeOutcome) {
	t.Helper()
	if out.Success {
		t.Fatal("Success = true, want false")
	}
	if out.Error == "" {
		t.Error("failed outcome must carry an error message")
	}
	if out.Data == nil || len(out.Data) != 0 {
		t.Errorf("Data = %#v, want empty non-nil", out.Data)
	}
}

func TestScrape_Success(t *testing.T) {
	f := &fakeFetcher{html: `<ul><li><a href="/a">A</a></li><li><a href="/b">B</a></li></ul>`}
	out := New(f).Scrape(context.Background(), request("a::attr(href)"))

	if !out.Success || out.Error != "" {
		t.Fatalf("outcome = %+v", out)
	}
	if len(out.Data) != 2 || out.Data[0]["value"] != "/a" || out.Data[1]["value"] != "/b" {
		t.Errorf("Data = %v", out.Data)
	}
	if f.gotURL != "https://example.com" {
		t.Errorf("fetched %q", f.gotURL)
	}
}

func TestScrape_EmptyMatchIsSuccess(t *testing.T) {
	out := New(&fakeFetcher{html: `<p>x</p>`}).Scrape(context.Background(), request("table td::text"))
	if !out.Success || out.Error != "" {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Data == nil || len(out.Data) != 0 {
		t.Errorf("Data = %#v, want empty non-nil", out.Data)
	}
}

func TestScrape_UnknownStrategy(t *testing.T) {
	req := request("p")
	req.Fetcher = "Curl"
	out := New(&fakeFetcher{html: `<p>x</p>`}).Scrape(context.Background(), req)

	assertFailure(t, out)
	if out.Error != "Unknown fetcher type: Curl" {
		t.Errorf("Error = %q", out.Error)
	}
}

func TestScrape_FetchError(t *testing.T) {
	cause := errors.New("connection refused")
	f := &fakeFetcher{err: models.NewScrapeError(models.ErrCodeNavigation, "http_engine: request failed", cause)}
	out := New(f).Scrape(context.Background(), request("p"))

	assertFailure(t, out)
	if out.Error != "http_engine: request failed: connection refused" {
		t.Errorf("Error = %q", out.Error)
	}

	out = New(&fakeFetcher{err: cause}).Scrape(context.Background(), request("p"))
	assertFailure(t, out)
	if out.Error != "connection refused" {
		t.Errorf("plain error = %q", out.Error)
	}
}

func TestScrape_QueryError(t *testing.T) {
	out := New(&fakeFetcher{html: `<p>x</p>`}).Scrape(context.Background(), request("p["))
	assertFailure(t, out)
}

func TestScrape_PanicBecomesFailure(t *testing.T) {
	out := New(&fakeFetcher{panic: true}).Scrape(context.Background(), request("p"))
	assertFailure(t, out)
}

func TestScrape_ForwardsOptions(t *testing.T) {
	headless := false
	req := request("p")
	req.Options = models.FetchOptions{Timeout: 45, Headless: &headless}
	f := &fakeFetcher{html: `<p>x</p>`}
	New(f).Scrape(context.Background(), req)

	if f.gotOpts.Timeout != 45 || f.gotOpts.HeadlessOrDefault() {
		t.Errorf("options = %+v", f.gotOpts)
	}
}
