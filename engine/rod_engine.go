package engine

import (
	"context"

	"github.com/use-agent/scrapeui/config"
	"github.com/use-agent/scrapeui/models"
)

// RodEngine is a browser-based engine. The two browser strategies share it
// and differ only in which options they forward to the launch.
type RodEngine struct {
	name   models.Strategy
	fetch  browserFetchFunc
	params func(opts models.FetchOptions) browserParams
}

// NewStealthyEngine serves StealthyFetcher: stealth injection, network
// idle always on, optional Cloudflare solving. Timeout is never forwarded.
func NewStealthyEngine(browserCfg config.BrowserConfig, engineCfg config.EngineConfig) *RodEngine {
	runner := &browserRunner{browserCfg: browserCfg, engineCfg: engineCfg}
	return newRodEngine(models.StrategyStealthy, runner.fetch, stealthyParams)
}

// NewDynamicEngine serves DynamicFetcher: plain automation with optional
// network idle. Timeout is never forwarded.
func NewDynamicEngine(browserCfg config.BrowserConfig, engineCfg config.EngineConfig) *RodEngine {
	runner := &browserRunner{browserCfg: browserCfg, engineCfg: engineCfg}
	return newRodEngine(models.StrategyDynamic, runner.fetch, dynamicParams)
}

func newRodEngine(name models.Strategy, fetch browserFetchFunc, params func(models.FetchOptions) browserParams) *RodEngine {
	return &RodEngine{name: name, fetch: fetch, params: params}
}

func stealthyParams(opts models.FetchOptions) browserParams {
	return browserParams{
		Headless:        opts.HeadlessOrDefault(),
		Stealth:         true,
		SolveCloudflare: opts.SolveCloudflare,
		NetworkIdle:     true,
	}
}

func dynamicParams(opts models.FetchOptions) browserParams {
	return browserParams{
		Headless:    opts.HeadlessOrDefault(),
		NetworkIdle: opts.NetworkIdleOrDefault(),
	}
}

func (e *RodEngine) Name() models.Strategy { return e.name }

func (e *RodEngine) Fetch(ctx context.Context, url string, opts models.FetchOptions) (*FetchResult, error) {
	if e.fetch == nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, string(e.name)+": browser not configured", nil)
	}

	result, err := e.fetch(ctx, url, e.params(opts))
	if err != nil {
		return nil, err
	}

	result.EngineName = e.name
	return result, nil
}
