package engine

import (
	"context"
	"errors"
	"net"

	"github.com/use-agent/scrapeui/models"
)

// categorizeError wraps raw errors into typed ScrapeErrors so callers can
// tell timeouts from other fetch faults.
func categorizeError(err error, msg string) *models.ScrapeError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
