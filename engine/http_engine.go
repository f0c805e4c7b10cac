package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/scrapeui/models"
	"golang.org/x/net/html/charset"
)

// HTTPEngine serves the Fetcher strategy: one plain HTTP GET with a
// Chrome-like TLS fingerprint and browser headers. No JavaScript runs.
type HTTPEngine struct {
	proxy        string
	maxBodyBytes int64
	headers      *headerGenerator
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Go's http.Transport cannot speak HTTP/2 over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// NewHTTPEngine creates an HTTPEngine. proxy may be empty; maxBodyBytes <= 0
// selects a 10 MiB cap.
func NewHTTPEngine(proxy string, maxBodyBytes int64) *HTTPEngine {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 10 << 20
	}
	return &HTTPEngine{
		proxy:        proxy,
		maxBodyBytes: maxBodyBytes,
		headers:      newHeaderGenerator(nil),
	}
}

func (e *HTTPEngine) Name() models.Strategy { return models.StrategyFetcher }

// newClient builds a client for a single call so that no connection is
// reused across calls.
func (e *HTTPEngine) newClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		DialTLSContext:    chromeTLSDialer(directDialer.DialContext),
		ForceAttemptHTTP2: false,
		DisableKeepAlives: true,
	}
	if e.proxy != "" {
		proxyURL, err := url.Parse(e.proxy)
		if err != nil {
			slog.Warn("ignoring unparsable proxy", "error", err)
		} else if err := routeThroughProxy(transport, proxyURL); err != nil {
			slog.Warn("ignoring unsupported proxy", "scheme", proxyURL.Scheme, "error", err)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// chromeTLSDialer returns a TLS dialer that opens the raw connection with
// dial and handshakes with the Chrome fingerprint.
func chromeTLSDialer(dial dialContextFunc) dialContextFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dial(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		host, _, _ := net.SplitHostPort(addr)
		tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
		if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
			conn.Close()
			return nil, fmt.Errorf("http_engine: apply tls spec: %w", err)
		}
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		return tlsConn, nil
	}
}

// Fetch performs the GET. Only opts.Timeout is read.
func (e *HTTPEngine) Fetch(ctx context.Context, targetURL string, opts models.FetchOptions) (*FetchResult, error) {
	timeout := time.Duration(opts.TimeoutOrDefault()) * time.Second
	client := e.newClient(timeout)
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetch, "http_engine: build request", err)
	}
	e.headers.apply(req)

	resp, err := client.Do(req)
	if err != nil {
		return nil, categorizeError(err, "http_engine: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodyBytes))
	if err != nil {
		return nil, categorizeError(err, "http_engine: read body")
	}

	if detected, source := detectBotProtection(resp.StatusCode, resp.Header, body); detected {
		slog.Warn("bot protection detected on plain HTTP fetch",
			"url", targetURL, "status", resp.StatusCode, "source", source)
	} else if resp.StatusCode >= 400 {
		slog.Warn("non-success status, parsing response anyway",
			"url", targetURL, "status", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTMLContentType(ct) {
		slog.Debug("response is not HTML", "url", targetURL, "content_type", ct)
	}

	return &FetchResult{
		HTML:       decodeBody(body, resp.Header.Get("Content-Type")),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		EngineName: e.Name(),
	}, nil
}

// decodeBody converts body to UTF-8 using the declared or sniffed charset.
func decodeBody(body []byte, contentType string) string {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || enc == nil {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// isHTMLContentType returns true if the content-type header looks like HTML.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
