package engine

import (
	"bytes"
	"net/http"
	"strings"
)

// botDetector examines a response to decide whether a bot protection
// service blocked or challenged it.
type botDetector func(status int, header http.Header, body []byte) (detected bool, source string)

var botDetectors = []botDetector{
	detectCloudflare,
	detectAkamai,
	detectDataDome,
	detectPerimeterX,
}

// detectBotProtection runs every detector and reports the first hit.
func detectBotProtection(status int, header http.Header, body []byte) (bool, string) {
	for _, d := range botDetectors {
		if detected, source := d(status, header, body); detected {
			return true, source
		}
	}
	return false, ""
}

func detectCloudflare(status int, header http.Header, body []byte) (bool, string) {
	if status != http.StatusForbidden && status != http.StatusServiceUnavailable {
		return false, ""
	}
	if strings.Contains(strings.ToLower(header.Get("Server")), "cloudflare") {
		return true, "Cloudflare"
	}
	if bytes.Contains(body, []byte("cf-browser-verification")) ||
		bytes.Contains(body, []byte("cf-turnstile")) ||
		bytes.Contains(body, []byte("Attention Required! | Cloudflare")) {
		return true, "Cloudflare"
	}
	return false, ""
}

func detectAkamai(status int, header http.Header, body []byte) (bool, string) {
	if status != http.StatusForbidden {
		return false, ""
	}
	if strings.Contains(strings.ToLower(header.Get("Server")), "akamai") {
		return true, "Akamai"
	}
	if bytes.Contains(body, []byte("Reference #")) && bytes.Contains(body, []byte("Access Denied")) {
		return true, "Akamai"
	}
	return false, ""
}

func detectDataDome(status int, header http.Header, body []byte) (bool, string) {
	if status != http.StatusForbidden {
		return false, ""
	}
	if strings.Contains(strings.ToLower(header.Get("Server")), "datadome") ||
		header.Get("X-DataDome") != "" || header.Get("X-DataDome-Response") != "" {
		return true, "DataDome"
	}
	if bytes.Contains(body, []byte("geo.captcha-delivery.com")) {
		return true, "DataDome"
	}
	return false, ""
}

func detectPerimeterX(status int, header http.Header, body []byte) (bool, string) {
	if status != http.StatusForbidden {
		return false, ""
	}
	if header.Get("X-Px-Captcha") != "" {
		return true, "PerimeterX"
	}
	if bytes.Contains(body, []byte("client.perimeterx.net")) ||
		bytes.Contains(body, []byte("px-captcha")) ||
		bytes.Contains(body, []byte("_pxBlock")) {
		return true, "PerimeterX"
	}
	return false, ""
}
