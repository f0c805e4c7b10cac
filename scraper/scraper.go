package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/scrapeui/models"
	"github.com/use-agent/scrapeui/normalize"
	"github.com/use-agent/scrapeui/page"
)

// Fetcher retrieves a page with the named strategy. engine.Registry is the
// production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, url string, strategy models.Strategy, opts models.FetchOptions) (*page.Page, error)
}

// Scraper runs one fetch-then-normalize job per call. It holds no state
// beyond its fetcher and is safe for concurrent use.
type Scraper struct {
	fetcher Fetcher
}

// New creates a Scraper backed by f.
func New(f Fetcher) *Scraper {
	return &Scraper{fetcher: f}
}

// Scrape fetches req.URL with req.Fetcher, runs the selector and returns
// the outcome. Every failure, including a panic inside a query library,
// is reported through the outcome; Scrape itself never fails.
func (s *Scraper) Scrape(ctx context.Context, req *models.ScrapeRequest) (out models.ScrapeOutcome) {
	start := time.Now()
	logger := slog.With("fetcher", req.Fetcher, "url", req.URL, "selector_type", req.SelectorType)

	defer func() {
		if r := recover(); r != nil {
			err := models.NewScrapeError(models.ErrCodeInternal, fmt.Sprintf("panic during scrape: %v", r), nil)
			logger.Error("scrape panicked", "panic", r)
			out = models.Failed(errorMessage(err))
		}
	}()

	records, err := s.run(ctx, req)
	if err != nil {
		logger.Warn("scrape failed", "error", err, "duration", time.Since(start))
		return models.Failed(errorMessage(err))
	}

	logger.Info("scrape completed", "count", len(records), "duration", time.Since(start))
	return models.Succeeded(records)
}

func (s *Scraper) run(ctx context.Context, req *models.ScrapeRequest) ([]models.Record, error) {
	p, err := s.fetcher.Fetch(ctx, req.URL, req.Fetcher, req.Options)
	if err != nil {
		return nil, err
	}
	return normalize.Normalize(p, req.Selector, req.SelectorType)
}

// errorMessage is the user-facing text of err. Error codes stay in logs.
func errorMessage(err error) string {
	var se *models.ScrapeError
	if !errors.As(err, &se) {
		return err.Error()
	}
	if se.Err != nil {
		return se.Message + ": " + se.Err.Error()
	}
	return se.Message
}
