package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/backrose/backrose/internal/auth/session"
	"github.com/backrose/backrose/internal/auth/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

var (
	loginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backrose_auth_login_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backrose_auth_refresh_total",
		Help: "Token refresh attempts by result",
	}, []string{"result"})

	authFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backrose_auth_request_failures_total",
		Help: "Rejected authenticated requests by kind and detail",
	}, []string{"kind", "detail"})

	isRevokedDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backrose_is_token_revoked_duration_ms",
		Help:    "Latency of token revocation checks in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	})

	revocationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backrose_auth_revocations_total",
		Help: "Refresh tokens revoked by logout or rotation",
	})

	purgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backrose_auth_revocations_purged_total",
		Help: "Expired revocation entries removed by housekeeping",
	})
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

func ObserveLogin(result string)   { loginTotal.WithLabelValues(result).Inc() }
func ObserveRefresh(result string) { refreshTotal.WithLabelValues(result).Inc() }
func ObservePurged(n int64)        { purgedTotal.Add(float64(n)) }

// Observer feeds session authentication failures into the counters.
type Observer struct{}

func (Observer) AuthFailed(err *session.AuthError) {
	kind := "authentication_failed"
	detail := err.Detail
	if err.Kind == session.KindPermissionDenied {
		kind = "permission_denied"
		// CSRF origin failures embed the origin; keep the label bounded.
		detail = "CSRF Failed"
	}
	authFailuresTotal.WithLabelValues(kind, detail).Inc()
}

// InstrumentRevocations wraps a revocation store with latency and volume
// metrics.
func InstrumentRevocations(next store.Revocations) store.Revocations {
	return &instrumented{next: next}
}

type instrumented struct {
	next store.Revocations
}

func (i *instrumented) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	inserted, err := i.next.Revoke(ctx, jti, expiresAt)
	if inserted {
		revocationsTotal.Inc()
	}
	return inserted, err
}

func (i *instrumented) IsRevoked(ctx context.Context, jti string) (bool, error) {
	start := time.Now()
	defer func() {
		isRevokedDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()
	return i.next.IsRevoked(ctx, jti)
}

func (i *instrumented) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return i.next.PurgeExpired(ctx, now)
}
