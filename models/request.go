package models

import (
	"fmt"
	"strings"
)

// Strategy names one of the three fetch modes.
type Strategy string

const (
	// StrategyFetcher is a plain HTTP fetch, no JavaScript.
	StrategyFetcher Strategy = "Fetcher"
	// StrategyStealthy is browser automation with anti-bot evasion.
	StrategyStealthy Strategy = "StealthyFetcher"
	// StrategyDynamic is browser automation for JavaScript-rendered pages.
	StrategyDynamic Strategy = "DynamicFetcher"
)

// Strategies lists every known strategy in the order the UI offers them.
var Strategies = []Strategy{StrategyFetcher, StrategyStealthy, StrategyDynamic}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	for _, known := range Strategies {
		if s == known {
			return true
		}
	}
	return false
}

// SelectorType is the query language of a selector.
type SelectorType string

const (
	SelectorCSS   SelectorType = "CSS"
	SelectorXPath SelectorType = "XPath"
)

// Timeout bounds for the Fetcher strategy, in seconds.
const (
	DefaultTimeout = 30
	MinTimeout     = 10
	MaxTimeout     = 60
)

// FetchOptions is the options bag handed to the strategy selector.
// Each strategy reads only the fields relevant to it.
type FetchOptions struct {
	// Timeout is the request timeout in seconds (Fetcher only).
	// Default: 30. Range: 10-60.
	Timeout int `json:"timeout,omitempty"`

	// Headless runs the browser without a window (StealthyFetcher, DynamicFetcher).
	// Default: true.
	Headless *bool `json:"headless,omitempty"`

	// SolveCloudflare attempts to pass Cloudflare challenges (StealthyFetcher only).
	// Default: false.
	SolveCloudflare bool `json:"solve_cloudflare,omitempty"`

	// NetworkIdle waits until the page stops issuing requests (DynamicFetcher only).
	// Default: true.
	NetworkIdle *bool `json:"network_idle,omitempty"`
}

// TimeoutOrDefault returns the configured timeout clamped to [MinTimeout, MaxTimeout],
// or DefaultTimeout when unset.
func (o FetchOptions) TimeoutOrDefault() int {
	switch {
	case o.Timeout == 0:
		return DefaultTimeout
	case o.Timeout < MinTimeout:
		return MinTimeout
	case o.Timeout > MaxTimeout:
		return MaxTimeout
	}
	return o.Timeout
}

// HeadlessOrDefault returns Headless, defaulting to true.
func (o FetchOptions) HeadlessOrDefault() bool {
	if o.Headless == nil {
		return true
	}
	return *o.Headless
}

// NetworkIdleOrDefault returns NetworkIdle, defaulting to true.
func (o FetchOptions) NetworkIdleOrDefault() bool {
	if o.NetworkIdle == nil {
		return true
	}
	return *o.NetworkIdle
}

// ScrapeRequest is the payload for POST /api/v1/scrape and the input of
// the orchestrator.
type ScrapeRequest struct {
	// URL is the target page. Required.
	URL string `json:"url"`

	// Fetcher selects the fetch strategy. Default: "Fetcher".
	Fetcher Strategy `json:"fetcher,omitempty"`

	// Selector is a CSS or XPath expression, optionally ending in
	// ::text or ::attr(name). Required.
	Selector string `json:"selector"`

	// SelectorType is "CSS" (default) or "XPath".
	SelectorType SelectorType `json:"selector_type,omitempty"`

	// Options carries the strategy-specific settings.
	Options FetchOptions `json:"options"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.Fetcher == "" {
		r.Fetcher = StrategyFetcher
	}
	if r.SelectorType == "" {
		r.SelectorType = SelectorCSS
	}
}

// Validate checks the fields a UI must fill in before calling the
// orchestrator. Messages are shown to the user verbatim.
func (r *ScrapeRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.URL) == "":
		return NewScrapeError(ErrCodeInvalidInput, "Please enter a URL", nil)
	case strings.TrimSpace(r.Selector) == "":
		return NewScrapeError(ErrCodeInvalidInput, "Please enter a selector", nil)
	case !r.Fetcher.Valid():
		return NewScrapeError(ErrCodeInvalidInput, fmt.Sprintf("Unknown fetcher type: %s", r.Fetcher), nil)
	case r.SelectorType != SelectorCSS && r.SelectorType != SelectorXPath:
		return NewScrapeError(ErrCodeInvalidInput, fmt.Sprintf("Unknown selector type: %s", r.SelectorType), nil)
	case r.Options.Timeout != 0 && (r.Options.Timeout < MinTimeout || r.Options.Timeout > MaxTimeout):
		return NewScrapeError(ErrCodeInvalidInput,
			fmt.Sprintf("timeout must be between %d and %d seconds", MinTimeout, MaxTimeout), nil)
	}
	return nil
}
