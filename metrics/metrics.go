// Package metrics exposes Prometheus counters for scrape jobs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/use-agent/scrapeui/models"
)

var (
	ScrapeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrapeui_scrape_requests_total",
			Help: "Total number of scrape jobs executed",
		},
		[]string{"fetcher", "selector_type", "status"},
	)

	ScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrapeui_scrape_duration_seconds",
			Help:    "Duration of scrape jobs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"fetcher"},
	)

	ScrapeRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrapeui_scrape_records_total",
			Help: "Total records extracted across all scrape jobs",
		},
		[]string{"fetcher"},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrapeui_exports_total",
			Help: "Total result downloads by format",
		},
		[]string{"format"},
	)
)

// RecordScrape updates the scrape metrics for one finished job.
func RecordScrape(req *models.ScrapeRequest, out models.ScrapeOutcome, d time.Duration) {
	if req == nil {
		return
	}
	fetcher := string(req.Fetcher)
	status := "success"
	if !out.Success {
		status = "error"
	}

	ScrapeRequestsTotal.WithLabelValues(fetcher, string(req.SelectorType), status).Inc()
	ScrapeDuration.WithLabelValues(fetcher).Observe(d.Seconds())
	ScrapeRecordsTotal.WithLabelValues(fetcher).Add(float64(len(out.Data)))
}

// RecordExport counts one download.
func RecordExport(format string) {
	ExportsTotal.WithLabelValues(format).Inc()
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
