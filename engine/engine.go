package engine

import (
	"context"

	"github.com/use-agent/scrapeui/models"
)

// Engine is the interface that all fetch strategies implement.
type Engine interface {
	// Name returns the strategy this engine serves.
	Name() models.Strategy

	// Fetch retrieves the page at url. Each engine reads only the options
	// relevant to it.
	Fetch(ctx context.Context, url string, opts models.FetchOptions) (*FetchResult, error)
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML       string
	StatusCode int
	FinalURL   string
	EngineName models.Strategy
}
