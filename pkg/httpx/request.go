package httpx

import (
	"net/http"
	"strings"
)

// RequestScheme returns "https" for TLS connections, otherwise the first
// X-Forwarded-Proto value, otherwise "http".
func RequestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		first, _, _ := strings.Cut(proto, ",")
		return strings.ToLower(strings.TrimSpace(first))
	}
	return "http"
}

// RequestOrigin returns scheme://host for r.
func RequestOrigin(r *http.Request) string {
	return RequestScheme(r) + "://" + r.Host
}
