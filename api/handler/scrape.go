package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapeui/api/middleware"
	"github.com/use-agent/scrapeui/metrics"
	"github.com/use-agent/scrapeui/models"
)

// Scraper runs one scrape job. *scraper.Scraper implements it.
type Scraper interface {
	Scrape(ctx context.Context, req *models.ScrapeRequest) models.ScrapeOutcome
}

// Scrape returns a handler for POST /api/v1/scrape.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Scraper.Scrape → outcome (never an error).
//  3. Session bookkeeping: last results on success, history entry always.
//  4. Metrics, then 200 with the outcome. A failed scrape is still a 200;
//     only a rejected request is a 400.
func Scrape(sc Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondInvalid(c, err)
			return
		}
		req.Defaults()
		if err := req.Validate(); err != nil {
			respondInvalid(c, err)
			return
		}

		// ── 2. Scrape ───────────────────────────────────────────────
		start := time.Now()
		out := sc.Scrape(c.Request.Context(), &req)
		elapsed := time.Since(start)

		// ── 3. Session bookkeeping ──────────────────────────────────
		if sess := middleware.CurrentSession(c); sess != nil {
			if out.Success {
				sess.SetResults(req.URL, out.Data)
			}
			sess.History.Add(req.URL, req.Fetcher, req.Selector, len(out.Data), out.Success, time.Now())
		}

		// ── 4. Metrics + respond ────────────────────────────────────
		metrics.RecordScrape(&req, out, elapsed)
		c.JSON(http.StatusOK, models.ScrapeResponse{
			ScrapeOutcome: out,
			Count:         len(out.Data),
		})
	}
}

// respondInvalid writes a 400 carrying the same outcome shape as a failed
// scrape, plus the structured error detail.
func respondInvalid(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), err)
	}
	c.JSON(http.StatusBadRequest, models.ScrapeResponse{
		ScrapeOutcome: models.Failed(scrapeErr.Message),
		Detail:        scrapeErr.ToDetail(),
	})
}
