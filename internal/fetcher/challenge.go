package fetcher

import (
	"bytes"
	"net/http"
	"strings"
)

// detectChallenge recognizes the anti-bot shields that front private
// trackers. A challenged response means the page markup is a block page,
// not the member dashboard, and extraction would misreport template drift.
func detectChallenge(statusCode int, headers http.Header, body []byte) (bool, string) {
	if detected, shield := detectCloudflare(statusCode, headers, body); detected {
		return true, shield
	}
	return detectDDoSGuard(statusCode, headers, body)
}

// detectCloudflare looks for common Cloudflare challenge/block signatures,
// the "5 second shield" in tracker parlance.
func detectCloudflare(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden && statusCode != http.StatusServiceUnavailable {
		return false, ""
	}

	if strings.Contains(strings.ToLower(headers.Get("Server")), "cloudflare") {
		return true, "Cloudflare"
	}

	if bytes.Contains(body, []byte("cf-browser-verification")) ||
		bytes.Contains(body, []byte("cf-turnstile")) ||
		bytes.Contains(body, []byte("cloudflare-nginx")) ||
		bytes.Contains(body, []byte("Attention Required! | Cloudflare")) {
		return true, "Cloudflare"
	}
	return false, ""
}

// detectDDoSGuard looks for DDoS-Guard block pages, common on trackers
// hosted outside Cloudflare's reach.
func detectDDoSGuard(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden && statusCode != http.StatusServiceUnavailable {
		return false, ""
	}

	if strings.Contains(strings.ToLower(headers.Get("Server")), "ddos-guard") {
		return true, "DDoS-Guard"
	}

	if bytes.Contains(body, []byte("ddos-guard")) || bytes.Contains(body, []byte("DDoS-Guard")) {
		return true, "DDoS-Guard"
	}
	return false, ""
}
