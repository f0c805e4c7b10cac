package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapeui/api/middleware"
	"github.com/use-agent/scrapeui/export"
	"github.com/use-agent/scrapeui/metrics"
	"github.com/use-agent/scrapeui/models"
)

// History returns a handler for GET /api/v1/history. ?limit=N keeps the
// N newest entries.
func History() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := []models.HistoryEntry{}
		if sess := middleware.CurrentSession(c); sess != nil {
			entries = sess.History.Entries()
		}

		if raw := c.Query("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				respondInvalid(c, models.NewScrapeError(models.ErrCodeInvalidInput, "limit must be a non-negative integer", err))
				return
			}
			if limit < len(entries) {
				entries = entries[:limit]
			}
		}

		c.JSON(http.StatusOK, models.HistoryResponse{Entries: entries})
	}
}

// Results returns a handler for GET /api/v1/results.
func Results() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.ResultsResponse{Data: []models.Record{}}
		if sess := middleware.CurrentSession(c); sess != nil {
			resp.URL, resp.Data = sess.Results()
		}
		resp.Count = len(resp.Data)
		c.JSON(http.StatusOK, resp)
	}
}

// Download returns a handler for GET /api/v1/results/download/:format.
// It answers 404 when the session has no results to export.
func Download() gin.HandlerFunc {
	return func(c *gin.Context) {
		format, err := export.ParseFormat(c.Param("format"))
		if err != nil {
			respondInvalid(c, err)
			return
		}

		var records []models.Record
		if sess := middleware.CurrentSession(c); sess != nil {
			_, records = sess.Results()
		}
		if len(records) == 0 {
			c.JSON(http.StatusNotFound, models.ScrapeResponse{
				ScrapeOutcome: models.Failed("No results to download"),
				Detail:        &models.ErrorDetail{Code: models.ErrCodeNoResults, Message: "No results to download"},
			})
			return
		}

		body, err := export.Encode(format, records)
		if err != nil {
			slog.Error("export failed", "format", format, "error", err)
			c.JSON(http.StatusInternalServerError, models.ScrapeResponse{
				ScrapeOutcome: models.Failed(err.Error()),
				Detail:        &models.ErrorDetail{Code: models.ErrCodeInternal, Message: err.Error()},
			})
			return
		}

		metrics.RecordExport(string(format))
		c.Header("Content-Disposition", `attachment; filename="`+format.FileName()+`"`)
		c.Data(http.StatusOK, format.MIME(), body)
	}
}
