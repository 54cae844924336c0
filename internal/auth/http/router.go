package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/backrose/backrose/internal/auth/metrics"
	"github.com/backrose/backrose/internal/auth/service"
	"github.com/backrose/backrose/internal/auth/session"
	"github.com/backrose/backrose/internal/auth/store"
	"github.com/backrose/backrose/pkg/httpx"
	"github.com/backrose/backrose/pkg/slogx"

	_ "github.com/backrose/backrose/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService  *service.TokenService
	UserService   *service.UserService
	Authenticator *session.Authenticator
	Cookies       *session.CookieBinder
	Media         *service.MediaStore

	// RevocationPinger checks an external revocation backend in /readyz.
	// Nil when revocations live in the store.
	RevocationPinger Pinger
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Backrose Authentication API
//	@version		0.1.0
//	@description	Cookie-based JWT sessions for the rose garden catalog.
//	@description
//	@description				Tokens are HS256 JWTs carried in HttpOnly cookies. Unsafe requests must echo
//	@description				the csrftoken cookie in the X-CSRFToken header.
//
//	@host						localhost:8000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						access
//
//	@securityDefinitions.apikey	CSRFToken
//	@in							header
//	@name						X-CSRFToken
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authenticated runs the cookie authenticator, then demands a user.
func (r *Router) authenticated(h http.Handler, mws ...httpx.Middleware) http.Handler {
	chain := append([]httpx.Middleware{
		r.Authenticator.Middleware(metrics.Observer{}),
		session.RequireAuthentication,
	}, mws...)
	return httpx.Chain(h, chain...)
}

func (r *Router) registerSession() {
	// POST /token/ - strict rate limit by IP + email to slow password guessing
	login := &LoginHandler{
		UserService:  r.UserService,
		TokenService: r.TokenService,
		Cookies:      r.Cookies,
		Media:        r.Media,
	}
	r.Mux.Handle("POST /token/",
		httpx.Chain(login,
			httpx.RateLimitByIPAndBodyField(httpx.StrictLimit, "email"),
		),
	)

	// POST /token/refresh/ - moderate rate limit
	refresh := &RefreshHandler{TokenService: r.TokenService, Cookies: r.Cookies}
	r.Mux.Handle("POST /token/refresh/",
		httpx.Chain(refresh,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /logout/ - always succeeds, no authentication required
	logout := &LogoutHandler{TokenService: r.TokenService, Cookies: r.Cookies}
	r.Mux.Handle("POST /logout/",
		httpx.Chain(logout,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerUsers() {
	user := &UserHandler{UserService: r.UserService, Media: r.Media}
	update := &ProfileUpdateHandler{UserService: r.UserService, Media: r.Media}

	r.Mux.Handle("GET /user/", r.authenticated(user,
		httpx.RateLimitByUser(httpx.PublicLimit),
	))
	r.Mux.Handle("PATCH /user/", r.authenticated(update,
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
	r.Mux.Handle("PATCH /profile/update/", r.authenticated(update,
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))

	// POST /register/ - strict rate limit by IP
	register := &RegisterHandler{UserService: r.UserService}
	r.Mux.Handle("POST /register/",
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	if r.Media != nil && r.Media.Root != "" {
		prefix := r.Media.URLPrefix
		r.Mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(r.Media.Root))))
	}
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.RevocationPinger),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", metrics.Handler())
}
