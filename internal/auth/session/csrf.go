package session

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"

	"github.com/backrose/backrose/pkg/httpx"
)

// DefaultCSRFHeader is the header clients echo the csrftoken cookie in.
const DefaultCSRFHeader = "X-CSRFToken"

// CSRF failure reasons.
const (
	ReasonNoCookie      = "CSRF cookie not set."
	ReasonTokenMissing  = "CSRF token missing."
	ReasonTokenMismatch = "CSRF token incorrect."
)

// CSRFGuard enforces the double-submit check on unsafe requests: the header
// must equal the csrftoken cookie, and a present Origin must be the
// request's own origin or a trusted one.
type CSRFGuard struct {
	CookieName     string
	HeaderName     string
	TrustedOrigins []string // "https://app.example" or "https://*.example"
}

// Safe reports whether method cannot change state.
func Safe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// Check returns the failure reason, or "" when r passes.
func (g *CSRFGuard) Check(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" && !g.originAllowed(r, origin) {
		return "Origin checking failed - " + origin + " does not match any trusted origins."
	}

	cookie := cookieValue(r, g.CookieName)
	if cookie == "" {
		return ReasonNoCookie
	}

	header := r.Header.Get(g.HeaderName)
	if header == "" {
		return ReasonTokenMissing
	}

	if subtle.ConstantTimeCompare([]byte(header), []byte(cookie)) != 1 {
		return ReasonTokenMismatch
	}
	return ""
}

func (g *CSRFGuard) originAllowed(r *http.Request, origin string) bool {
	if strings.EqualFold(origin, httpx.RequestOrigin(r)) {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	for _, trusted := range g.TrustedOrigins {
		if strings.EqualFold(trusted, origin) {
			return true
		}
		scheme, host, ok := strings.Cut(trusted, "://")
		if !ok || !strings.EqualFold(scheme, u.Scheme) {
			continue
		}
		if suffix, wildcard := strings.CutPrefix(host, "*"); wildcard &&
			strings.HasSuffix(strings.ToLower(u.Host), strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

