package session

import (
	"net/http"
	"time"

	"github.com/backrose/backrose/internal/auth/domain"
	"github.com/backrose/backrose/pkg/cryptox"
)

// DefaultCSRFMaxAge matches the one year lifetime browsers commonly see for
// csrftoken cookies.
const DefaultCSRFMaxAge = 365 * 24 * time.Hour

// CookieConfig holds the names and attributes of the session cookies. It is
// built once at startup and never mutated.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Path        string
	Domain      string
	Secure      bool
	HTTPOnly    bool
	SameSite    http.SameSite

	CSRFName     string
	CSRFSecure   bool
	CSRFSameSite http.SameSite
	CSRFMaxAge   time.Duration
}

// DefaultCookieConfig returns the production defaults: HttpOnly, Secure,
// SameSite=None token cookies on "/".
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		AccessName:   "access",
		RefreshName:  "refresh",
		Path:         "/",
		Secure:       true,
		HTTPOnly:     true,
		SameSite:     http.SameSiteNoneMode,
		CSRFName:     "csrftoken",
		CSRFSecure:   true,
		CSRFSameSite: http.SameSiteLaxMode,
		CSRFMaxAge:   DefaultCSRFMaxAge,
	}
}

// CookieBinder moves tokens between responses and requests.
type CookieBinder struct {
	Config CookieConfig
}

// Write sets the access cookie and, when the pair carries one, the refresh
// cookie. Max-Age equals each token's TTL in seconds.
func (b *CookieBinder) Write(w http.ResponseWriter, pair domain.TokenPair) {
	b.WriteAccess(w, pair.Access)
	if pair.Refresh != nil {
		b.WriteRefresh(w, *pair.Refresh)
	}
}

func (b *CookieBinder) WriteAccess(w http.ResponseWriter, tok domain.IssuedToken) {
	http.SetCookie(w, b.tokenCookie(b.Config.AccessName, tok.Raw, tok.TTL))
}

func (b *CookieBinder) WriteRefresh(w http.ResponseWriter, tok domain.IssuedToken) {
	http.SetCookie(w, b.tokenCookie(b.Config.RefreshName, tok.Raw, tok.TTL))
}

// RotateCSRF issues a fresh csrftoken cookie and returns its value.
func (b *CookieBinder) RotateCSRF(w http.ResponseWriter) (string, error) {
	value, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, b.csrfCookie(value, b.Config.CSRFMaxAge))
	return value, nil
}

// Clear expires all three cookies using the attributes they were written
// with; browsers ignore a deletion whose path or domain differs.
func (b *CookieBinder) Clear(w http.ResponseWriter) {
	http.SetCookie(w, b.tokenCookie(b.Config.AccessName, "", -1))
	http.SetCookie(w, b.tokenCookie(b.Config.RefreshName, "", -1))
	http.SetCookie(w, b.csrfCookie("", -1))
}

// AccessToken returns the raw access cookie, or "" when absent.
func (b *CookieBinder) AccessToken(r *http.Request) string {
	return cookieValue(r, b.Config.AccessName)
}

// RefreshToken returns the raw refresh cookie, or "" when absent.
func (b *CookieBinder) RefreshToken(r *http.Request) string {
	return cookieValue(r, b.Config.RefreshName)
}

// tokenCookie builds a token cookie. A negative ttl produces a deletion
// (Max-Age=0 on the wire).
func (b *CookieBinder) tokenCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     b.Config.Path,
		Domain:   b.Config.Domain,
		MaxAge:   maxAge(ttl),
		Secure:   b.Config.Secure,
		HttpOnly: b.Config.HTTPOnly,
		SameSite: b.Config.SameSite,
	}
}

func (b *CookieBinder) csrfCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     b.Config.CSRFName,
		Value:    value,
		Path:     "/",
		Domain:   b.Config.Domain,
		MaxAge:   maxAge(ttl),
		Secure:   b.Config.CSRFSecure,
		HttpOnly: false,
		SameSite: b.Config.CSRFSameSite,
	}
}

func maxAge(ttl time.Duration) int {
	if ttl < 0 {
		return -1
	}
	return int(ttl / time.Second)
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
