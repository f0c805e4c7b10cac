package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/use-agent/scrapeui/config"
	"github.com/use-agent/scrapeui/engine"
	"github.com/use-agent/scrapeui/export"
	"github.com/use-agent/scrapeui/models"
	"github.com/use-agent/scrapeui/scraper"
)

var version = "dev"

var (
	selector        string
	selectorType    string
	fetcher         string
	timeout         int
	headless        bool
	solveCloudflare bool
	networkIdle     bool
	outputFile      string
	verbose         bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:     "scrape [URL]",
		Short:   "Fetch a page and extract data with a CSS or XPath selector",
		Version: version,
		Example: `  # All links on a page
  scrape -s "a::attr(href)" https://example.com

  # Paragraph text from a JavaScript-rendered page, saved as a spreadsheet
  scrape -f DynamicFetcher -s "p::text" -o out.xlsx https://example.com

  # XPath through the anti-bot browser
  scrape -f StealthyFetcher --solve-cloudflare -t XPath -s "//h1/text()" https://example.com`,
		Args:         cobra.ExactArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&selector, "selector", "s", "", "CSS or XPath selector, optionally ending in ::text or ::attr(name)")
	rootCmd.Flags().StringVarP(&selectorType, "type", "t", string(models.SelectorCSS), "Selector type (CSS, XPath)")
	rootCmd.Flags().StringVarP(&fetcher, "fetcher", "f", string(models.StrategyFetcher), "Fetch strategy (Fetcher, StealthyFetcher, DynamicFetcher)")
	rootCmd.Flags().IntVar(&timeout, "timeout", models.DefaultTimeout, "Request timeout in seconds, Fetcher only (10-60)")
	rootCmd.Flags().BoolVar(&headless, "headless", true, "Run the browser without a window (StealthyFetcher, DynamicFetcher)")
	rootCmd.Flags().BoolVar(&solveCloudflare, "solve-cloudflare", false, "Attempt Cloudflare challenges (StealthyFetcher)")
	rootCmd.Flags().BoolVar(&networkIdle, "network-idle", true, "Wait for network idle (DynamicFetcher)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write results to a .csv, .json or .xlsx file instead of stdout")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	req := &models.ScrapeRequest{
		URL:          args[0],
		Fetcher:      models.Strategy(fetcher),
		Selector:     selector,
		SelectorType: models.SelectorType(selectorType),
		Options: models.FetchOptions{
			Timeout:         timeout,
			Headless:        &headless,
			SolveCloudflare: solveCloudflare,
			NetworkIdle:     &networkIdle,
		},
	}
	req.Defaults()
	if err := req.Validate(); err != nil {
		return errorText(err)
	}

	var format export.Format
	if outputFile != "" {
		f, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(outputFile), "."))
		if err != nil {
			return fmt.Errorf("cannot infer export format from %q: use .csv, .json or .xlsx", outputFile)
		}
		format = f
	}

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sc := scraper.New(engine.NewDefaultRegistry(cfg.Browser, cfg.Engine))
	out := sc.Scrape(ctx, req)
	if !out.Success {
		return fmt.Errorf("%s", out.Error)
	}

	if outputFile == "" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	body, err := export.Encode(format, out.Data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputFile, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputFile, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d records to %s\n", len(out.Data), outputFile)
	return nil
}

// errorText drops the error code so the CLI prints what the UI would show.
func errorText(err error) error {
	if se, ok := err.(*models.ScrapeError); ok {
		return fmt.Errorf("%s", se.Message)
	}
	return err
}
