package engine

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// chromeUserAgents is the pool stealth headers draw from. Only Chrome
// builds are listed so the User-Agent agrees with the TLS fingerprint.
var chromeUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
}

var reChromeMajor = regexp.MustCompile(`Chrome/(\d+)`)

// headerGenerator produces realistic browser request headers.
type headerGenerator struct {
	uas []string
}

func newHeaderGenerator(uas []string) *headerGenerator {
	if len(uas) == 0 {
		uas = chromeUserAgents
	}
	copied := make([]string, len(uas))
	copy(copied, uas)
	return &headerGenerator{uas: copied}
}

// userAgent returns a random entry using crypto/rand.
func (g *headerGenerator) userAgent() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(g.uas))))
	if err != nil {
		return g.uas[0]
	}
	return g.uas[n.Int64()]
}

// apply sets browser-like headers on req, including client hints that
// match the chosen User-Agent and a Google search Referer for the host.
// Accept-Encoding is left to the transport so gzip is decoded transparently.
func (g *headerGenerator) apply(req *http.Request) {
	ua := g.userAgent()
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Sec-Fetch-User", "?1")

	if m := reChromeMajor.FindStringSubmatch(ua); m != nil {
		req.Header.Set("Sec-Ch-Ua", `"Google Chrome";v="`+m[1]+`", "Chromium";v="`+m[1]+`", "Not_A Brand";v="24"`)
		req.Header.Set("Sec-Ch-Ua-Mobile", "?0")
		req.Header.Set("Sec-Ch-Ua-Platform", `"`+platformOf(ua)+`"`)
	}

	if ref := googleReferer(req.URL); ref != "" {
		req.Header.Set("Referer", ref)
	}
}

func platformOf(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Macintosh"):
		return "macOS"
	default:
		return "Linux"
	}
}

// googleReferer makes the request look like it came from a search for the
// target host.
func googleReferer(u *url.URL) string {
	if u == nil || u.Hostname() == "" {
		return ""
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
}
