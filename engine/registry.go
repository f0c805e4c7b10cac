package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/use-agent/scrapeui/config"
	"github.com/use-agent/scrapeui/models"
	"github.com/use-agent/scrapeui/page"
)

// Registry maps a strategy name to its engine. It holds no per-call state:
// every Fetch builds its own client or browser.
type Registry struct {
	engines map[models.Strategy]Engine
}

// NewRegistry creates a Registry from the given engines. A later engine
// with the same name replaces an earlier one.
func NewRegistry(engines ...Engine) *Registry {
	r := &Registry{engines: make(map[models.Strategy]Engine, len(engines))}
	for _, e := range engines {
		r.engines[e.Name()] = e
	}
	return r
}

// NewDefaultRegistry wires the three built-in strategies.
func NewDefaultRegistry(browserCfg config.BrowserConfig, engineCfg config.EngineConfig) *Registry {
	return NewRegistry(
		NewHTTPEngine(browserCfg.DefaultProxy, engineCfg.MaxBodyBytes),
		NewStealthyEngine(browserCfg, engineCfg),
		NewDynamicEngine(browserCfg, engineCfg),
	)
}

// Fetch selects the engine for strategy, fetches url and parses the result
// into a Page. Errors from the engine are returned unchanged.
func (r *Registry) Fetch(ctx context.Context, url string, strategy models.Strategy, opts models.FetchOptions) (*page.Page, error) {
	eng, ok := r.engines[strategy]
	if !ok {
		return nil, models.NewScrapeError(models.ErrCodeUnknownStrategy,
			fmt.Sprintf("Unknown fetcher type: %s", strategy), nil)
	}

	slog.Debug("engine starting", "engine", eng.Name(), "url", url)
	result, err := eng.Fetch(ctx, url, opts)
	if err != nil {
		return nil, err
	}

	finalURL := result.FinalURL
	if finalURL == "" {
		finalURL = url
	}
	p, err := page.Parse(result.HTML, finalURL, result.StatusCode)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetch, "failed to parse page HTML", err)
	}
	return p, nil
}
