package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/use-agent/scrapeui/models"
)

func TestDetectBotProtection(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		body   string
		want   string
	}{
		{"cloudflare server", 403, http.Header{"Server": {"cloudflare"}}, "", "Cloudflare"},
		{"cloudflare turnstile", 503, http.Header{}, `<div class="cf-turnstile">`, "Cloudflare"},
		{"akamai", 403, http.Header{}, "Access Denied ... Reference #18.abc", "Akamai"},
		{"datadome header", 403, http.Header{"X-Datadome": {"protected"}}, "", "DataDome"},
		{"perimeterx", 403, http.Header{}, `<div id="px-captcha">`, "PerimeterX"},
		{"ok page", 200, http.Header{"Server": {"cloudflare"}}, "cf-turnstile", ""},
		{"plain 403", 403, http.Header{"Server": {"nginx"}}, "Forbidden", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detected, source := detectBotProtection(tt.status, tt.header, []byte(tt.body))
			if detected != (tt.want != "") || source != tt.want {
				t.Errorf("got (%v, %q), want %q", detected, source, tt.want)
			}
		})
	}
}

func TestDetectCloudflareChallenge(t *testing.T) {
	tests := []struct {
		title string
		html  string
		want  challengeKind
	}{
		{"Just a moment...", "", challengeInterstitial},
		{"", `<form id="challenge-form" action="/?__cf_chl_f_tk=x">`, challengeInterstitial},
		{"", `<script>window._cf_chl_opt={}</script>`, challengeInterstitial},
		{"", `<div class="cf-chl-widget">`, challengeInterstitial},
		{"Login", `<div class="cf-turnstile" data-sitekey="x"></div>`, challengeTurnstile},
		{"Login", `<script src="https://challenges.cloudflare.com/turnstile/v0/api.js">`, challengeTurnstile},
		{"Example Domain", "<p>hello</p>", challengeNone},
	}
	for _, tt := range tests {
		if got := detectCloudflareChallenge(tt.title, tt.html); got != tt.want {
			t.Errorf("detect(%q, %q) = %s, want %s", tt.title, tt.html, got, tt.want)
		}
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{context.DeadlineExceeded, models.ErrCodeTimeout},
		{fmt.Errorf("wrapped: %w", context.Canceled), models.ErrCodeTimeout},
		{&url.Error{Op: "Get", URL: "http://x", Err: context.DeadlineExceeded}, models.ErrCodeTimeout},
		{errors.New("connection refused"), models.ErrCodeNavigation},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err, "msg"); got.Code != tt.code || !errors.Is(got, tt.err) {
			t.Errorf("categorizeError(%v) = %v, want code %s", tt.err, got, tt.code)
		}
	}
}

func TestHeaderGenerator(t *testing.T) {
	g := newHeaderGenerator([]string{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"})
	req, _ := http.NewRequest(http.MethodGet, "https://shop.example.com/items?id=1", nil)
	g.apply(req)

	if got := req.Header.Get("Sec-Ch-Ua-Platform"); got != `"macOS"` {
		t.Errorf("platform = %s", got)
	}
	if got := req.Header.Get("Sec-Ch-Ua"); !strings.Contains(got, `v="131"`) {
		t.Errorf("Sec-Ch-Ua = %s", got)
	}
	if got := req.Header.Get("Referer"); got != "https://www.google.com/search?q=shop.example.com" {
		t.Errorf("Referer = %s", got)
	}
	if req.Header.Get("Accept-Encoding") != "" {
		t.Error("Accept-Encoding must be left to the transport")
	}
}

func TestGoogleReferer_NoHost(t *testing.T) {
	if got := googleReferer(nil); got != "" {
		t.Errorf("googleReferer(nil) = %q", got)
	}
	if got := googleReferer(&url.URL{Path: "/x"}); got != "" {
		t.Errorf("googleReferer(no host) = %q", got)
	}
}
