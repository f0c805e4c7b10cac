package engine

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/scrapeui/config"
	"github.com/use-agent/scrapeui/models"
	"github.com/ysmood/gson"
)

// browserParams is everything a browser strategy forwards to the launch.
// It carries no timeout: browser strategies are bounded only by the
// caller's context.
type browserParams struct {
	Headless        bool
	Stealth         bool
	SolveCloudflare bool
	NetworkIdle     bool
}

// browserFetchFunc performs one browser-backed fetch.
type browserFetchFunc func(ctx context.Context, url string, p browserParams) (*FetchResult, error)

// browserRunner launches a fresh browser for every fetch and tears it down
// before returning.
type browserRunner struct {
	browserCfg config.BrowserConfig
	engineCfg  config.EngineConfig
}

// fetch runs one scoped browser session.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Launch               – dedicated Chromium process for this call
//  2. DEFER: teardown      – close browser, kill process, remove profile dir
//  3. Connect + open page
//  4. Stealth injection    – before navigation so the first document is covered
//  5. Extra headers        – Google search Referer
//  6. Idle listener setup  – MUST be registered before Navigate
//  7. Navigate + wait      – network idle or load event
//  8. Challenge solving    – optional Cloudflare pass
//  9. Extract              – rendered HTML, status code, final URL
func (r *browserRunner) fetch(ctx context.Context, targetURL string, p browserParams) (*FetchResult, error) {
	// ── 1. Launch ─────────────────────────────────────────────────────
	l := launcher.New().
		Context(ctx).
		Headless(p.Headless).
		NoSandbox(r.browserCfg.NoSandbox)

	if r.browserCfg.BrowserBin != "" {
		l = l.Bin(r.browserCfg.BrowserBin)
	}
	if r.browserCfg.DefaultProxy != "" {
		l = l.Proxy(r.browserCfg.DefaultProxy)
	}
	if p.Stealth {
		applyStealthFlags(l)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}

	// ── 2. Teardown on every exit path ───────────────────────────────
	defer func() {
		l.Kill()
		l.Cleanup()
	}()

	// ── 3. Connect and open a page ───────────────────────────────────
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			slog.Debug("browser close failed", "error", closeErr)
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}

	// ── 4. Stealth injection ─────────────────────────────────────────
	if p.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	// ── 5. Extra headers ─────────────────────────────────────────────
	if u, parseErr := url.Parse(targetURL); parseErr == nil {
		if ref := googleReferer(u); ref != "" {
			_ = proto.NetworkSetExtraHTTPHeaders{
				Headers: toHeadersMap(map[string]string{"Referer": ref}),
			}.Call(page)
		}
	}

	// ── 6. Idle listener BEFORE navigation ───────────────────────────
	var waitIdle func()
	if p.NetworkIdle {
		waitIdle = page.WaitRequestIdle(r.engineCfg.IdleWait, nil, nil, nil)
	}

	// ── 7. Navigate and wait ─────────────────────────────────────────
	if err := page.Navigate(targetURL); err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}
	if waitIdle != nil {
		waitIdle()
	} else if loadErr := page.WaitLoad(); loadErr != nil {
		slog.Debug("load event did not fire, proceeding with current DOM", "error", loadErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, categorizeError(err, "page did not settle before deadline")
	}

	// ── 8. Cloudflare ────────────────────────────────────────────────
	if p.SolveCloudflare {
		if err := solveCloudflare(ctx, page, r.engineCfg.CloudflareTimeout); err != nil {
			return nil, err
		}
	}

	// ── 9. Extract ───────────────────────────────────────────────────
	rawHTML, err := page.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}

	finalURL := evalStringOrEmpty(page, `() => window.location.href`)
	if finalURL == "" {
		finalURL = targetURL
	}

	return &FetchResult{
		HTML:       rawHTML,
		StatusCode: navigationStatus(page),
		FinalURL:   finalURL,
	}, nil
}

// applyStealthFlags removes the automation fingerprints Chromium exposes
// through its command line.
func applyStealthFlags(l *launcher.Launcher) {
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("no-first-run"))
}

// navigationStatus reads the HTTP status of the main document without CDP
// event listeners. Returns 0 when the browser does not expose it.
func navigationStatus(page *rod.Page) int {
	res, err := page.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
