package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/scrapeui/models"
)

func main() {
	apiURL := os.Getenv("SCRAPEUI_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8501"
	}
	apiURL = strings.TrimRight(apiURL, "/")

	// One jar for the process, so every tool call reuses a single API session.
	jar, _ := cookiejar.New(nil)

	s := server.NewMCPServer(
		"scrapeui",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapePageTool := mcp.NewTool("scrape_page",
		mcp.WithDescription("Fetch a web page and extract data with a CSS or XPath selector. Append ::text to get text or ::attr(name) to get an attribute; otherwise each match returns its text and an HTML preview."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS or XPath selector, e.g. 'a::attr(href)', 'p::text', '//h1/text()'"),
		),
		mcp.WithString("selector_type",
			mcp.Description("Selector language: 'CSS' (default) or 'XPath'"),
			mcp.Enum(string(models.SelectorCSS), string(models.SelectorXPath)),
		),
		mcp.WithString("fetcher",
			mcp.Description("Fetch strategy: 'Fetcher' (fast HTTP, default), 'StealthyFetcher' (anti-bot browser) or 'DynamicFetcher' (JavaScript rendering)"),
			mcp.Enum(string(models.StrategyFetcher), string(models.StrategyStealthy), string(models.StrategyDynamic)),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Request timeout in seconds, Fetcher only (10-60, default 30)"),
		),
		mcp.WithBoolean("headless",
			mcp.Description("Run the browser without a window (default true)"),
		),
		mcp.WithBoolean("solve_cloudflare",
			mcp.Description("Attempt Cloudflare challenges, StealthyFetcher only (default false)"),
		),
		mcp.WithBoolean("network_idle",
			mcp.Description("Wait for network idle, DynamicFetcher only (default true)"),
		),
	)
	s.AddTool(scrapePageTool, handleScrapePage(apiURL, jar))

	quickSelectorsTool := mcp.NewTool("quick_selectors",
		mcp.WithDescription("List ready-made selectors for common extractions (links, images, paragraphs, headings, table cells)."),
	)
	s.AddTool(quickSelectorsTool, handleQuickSelectors(apiURL, jar))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the scrapeui API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// apiGet sends a GET request to the scrapeui API and returns the response body.
func apiGet(ctx context.Context, client *http.Client, apiURL, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleScrapePage(apiURL string, jar http.CookieJar) server.ToolHandlerFunc {
	// Browser strategies can wait up to a minute on a challenge.
	client := &http.Client{Timeout: 180 * time.Second, Jar: jar}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		selector, err := request.RequireString("selector")
		if err != nil {
			return mcp.NewToolResultError("selector is required"), nil
		}

		headless := request.GetBool("headless", true)
		networkIdle := request.GetBool("network_idle", true)
		reqBody := models.ScrapeRequest{
			URL:          url,
			Fetcher:      models.Strategy(request.GetString("fetcher", "")),
			Selector:     selector,
			SelectorType: models.SelectorType(request.GetString("selector_type", "")),
			Options: models.FetchOptions{
				Timeout:         request.GetInt("timeout", 0),
				Headless:        &headless,
				SolveCloudflare: request.GetBool("solve_cloudflare", false),
				NetworkIdle:     &networkIdle,
			},
		}

		respBody, err := apiPost(ctx, client, apiURL, "/api/v1/scrape", reqBody)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var scrapeResp models.ScrapeResponse
		if err := json.Unmarshal(respBody, &scrapeResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !scrapeResp.Success {
			errMsg := "scrape failed"
			if scrapeResp.Error != "" {
				errMsg = scrapeResp.Error
			}
			if scrapeResp.Detail != nil {
				errMsg = fmt.Sprintf("[%s] %s", scrapeResp.Detail.Code, errMsg)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		data, err := json.MarshalIndent(scrapeResp.Data, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode results: %v", err)), nil
		}
		result := fmt.Sprintf("Found %d items on %s\n\n%s", scrapeResp.Count, url, data)
		return mcp.NewToolResultText(result), nil
	}
}

func handleQuickSelectors(apiURL string, jar http.CookieJar) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second, Jar: jar}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		respBody, err := apiGet(ctx, client, apiURL, "/api/v1/presets")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var presets models.PresetsResponse
		if err := json.Unmarshal(respBody, &presets); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		var b strings.Builder
		for _, p := range presets.Presets {
			fmt.Fprintf(&b, "%s: %s\n", p.Label, p.Selector)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}
