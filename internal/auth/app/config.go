package app

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Revocation backends.
const (
	RevocationSQLite   = "sqlite"
	RevocationRedis    = "redis"
	RevocationPostgres = "postgres"
)

type Config struct {
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8000)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Revocation purge interval (default: 1h)

	DatabaseFile   string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile     string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	SigningKey     string // Optional: HS256 secret; wins over SigningKeyFile
	SigningKeyFile string // Optional: file holding the HS256 secret, generated when missing (default: ./signing.key)
	MediaRoot      string // Directory for uploaded images (default: ./media)
	MediaURL       string // URL prefix the media directory is served under (default: /media/)

	AccessTokenLifetime    time.Duration // ACCESS_TOKEN_LIFETIME, minutes or duration (default: 15m)
	RefreshTokenLifetime   time.Duration // REFRESH_TOKEN_LIFETIME, days or duration (default: 7 days)
	RotateRefreshTokens    bool          // Issue a new refresh token on every refresh (default: false)
	BlacklistAfterRotation bool          // Revoke the rotated refresh token (default: true)

	AccessCookie       string        // AUTH_COOKIE (default: access)
	RefreshCookie      string        // AUTH_COOKIE_REFRESH (default: refresh)
	CookiePath         string        // AUTH_COOKIE_PATH (default: /)
	CookieDomain       string        // AUTH_COOKIE_DOMAIN (default: host-only)
	CookieSecure       bool          // AUTH_COOKIE_SECURE (default: true)
	CookieHTTPOnly     bool          // AUTH_COOKIE_HTTP_ONLY (default: true)
	CookieSameSite     http.SameSite // AUTH_COOKIE_SAMESITE (default: None)
	CSRFCookieName     string        // CSRF_COOKIE_NAME (default: csrftoken)
	CSRFHeaderName     string        // CSRF_HEADER_NAME (default: X-CSRFToken)
	CSRFCookieSecure   bool          // CSRF_COOKIE_SECURE (default: true)
	CSRFCookieSameSite http.SameSite // CSRF_COOKIE_SAMESITE (default: Lax)
	CSRFTrustedOrigins []string      // CSRF_TRUSTED_ORIGINS, comma separated

	RevocationBackend string // AUTH_REVOCATION_BACKEND: sqlite, redis or postgres (default: sqlite)
	RedisURL          string // REDIS_URL, required for the redis backend
	PostgresDSN       string // POSTGRES_DSN, required for the postgres backend
}

func LoadConfig() Config {
	return Config{
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8000),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second, time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour, time.Minute),

		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		SigningKey:     os.Getenv("AUTH_SIGNING_KEY"),
		SigningKeyFile: getEnvOrDefault("AUTH_SIGNING_KEY_FILE", "signing.key"),
		MediaRoot:      getEnvOrDefault("MEDIA_ROOT", "media"),
		MediaURL:       ensureSlashes(getEnvOrDefault("MEDIA_URL", "/media/")),

		AccessTokenLifetime:    getEnvDurationOrDefault("ACCESS_TOKEN_LIFETIME", 15*time.Minute, time.Minute),
		RefreshTokenLifetime:   getEnvDurationOrDefault("REFRESH_TOKEN_LIFETIME", 7*24*time.Hour, 24*time.Hour),
		RotateRefreshTokens:    getEnvBoolOrDefault("ROTATE_REFRESH_TOKENS", false),
		BlacklistAfterRotation: getEnvBoolOrDefault("BLACKLIST_AFTER_ROTATION", true),

		AccessCookie:       getEnvOrDefault("AUTH_COOKIE", "access"),
		RefreshCookie:      getEnvOrDefault("AUTH_COOKIE_REFRESH", "refresh"),
		CookiePath:         getEnvOrDefault("AUTH_COOKIE_PATH", "/"),
		CookieDomain:       os.Getenv("AUTH_COOKIE_DOMAIN"),
		CookieSecure:       getEnvBoolOrDefault("AUTH_COOKIE_SECURE", true),
		CookieHTTPOnly:     getEnvBoolOrDefault("AUTH_COOKIE_HTTP_ONLY", true),
		CookieSameSite:     getEnvSameSiteOrDefault("AUTH_COOKIE_SAMESITE", http.SameSiteNoneMode),
		CSRFCookieName:     getEnvOrDefault("CSRF_COOKIE_NAME", "csrftoken"),
		CSRFHeaderName:     getEnvOrDefault("CSRF_HEADER_NAME", "X-CSRFToken"),
		CSRFCookieSecure:   getEnvBoolOrDefault("CSRF_COOKIE_SECURE", true),
		CSRFCookieSameSite: getEnvSameSiteOrDefault("CSRF_COOKIE_SAMESITE", http.SameSiteLaxMode),
		CSRFTrustedOrigins: getEnvListOrDefault("CSRF_TRUSTED_ORIGINS", nil),

		RevocationBackend: strings.ToLower(getEnvOrDefault("AUTH_REVOCATION_BACKEND", RevocationSQLite)),
		RedisURL:          os.Getenv("REDIS_URL"),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
	}
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	if c.AccessTokenLifetime <= 0 || c.RefreshTokenLifetime <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.CookieSameSite == http.SameSiteNoneMode && !c.CookieSecure {
		return fmt.Errorf("AUTH_COOKIE_SAMESITE=None requires AUTH_COOKIE_SECURE=true")
	}

	switch c.RevocationBackend {
	case RevocationSQLite:
	case RevocationRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis revocation backend")
		}
	case RevocationPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres revocation backend")
		}
	default:
		return fmt.Errorf("unknown AUTH_REVOCATION_BACKEND %q", c.RevocationBackend)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

// getEnvDurationOrDefault accepts a Go duration ("1h", "30m") or a bare
// integer counted in unit.
func getEnvDurationOrDefault(key string, defaultValue, unit time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * unit
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func getEnvSameSiteOrDefault(key string, defaultValue http.SameSite) http.SameSite {
	switch strings.ToLower(os.Getenv(key)) {
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func ensureSlashes(prefix string) string {
	return "/" + strings.Trim(prefix, "/") + "/"
}
