// Package http wires the request pipeline: logging, security headers,
// CORS and rate limiting globally, bearer authentication per route, and
// the error translator at every failure point.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/grapelabs/grape/internal/server/service"
	"github.com/grapelabs/grape/internal/server/store"
	"github.com/grapelabs/grape/pkg/apperr"
	"github.com/grapelabs/grape/pkg/httpx"
	"github.com/grapelabs/grape/pkg/jwtx"
	"github.com/grapelabs/grape/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	env          string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	defaultLimiter *httpx.RateLimiter
	authLimiter    *httpx.RateLimiter

	AuthService  *service.AuthService
	TokenService *service.TokenService
	UserService  *service.UserService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion, env string,
	st store.Store,
	defaultLimiter, authLimiter *httpx.RateLimiter,
	cors httpx.CORSConfig,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:            http.NewServeMux(),
		verifier:       verifier,
		buildVersion:   buildVersion,
		env:            env,
		startTime:      time.Now(),
		store:          st,
		defaultLimiter: defaultLimiter,
		authLimiter:    authLimiter,
		logger:         logger,
	}

	// Global pipeline, outermost first: logging, hardening headers,
	// CORS, then the default rate limit. Auth and the stricter auth
	// limit are applied per route.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.SecurityHeaders(env == "prod"),
		httpx.CORS(cors),
		defaultLimiter.Middleware(httpx.IPKeyExtractor),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	// Catch-all so unknown routes still answer with the envelope.
	r.Mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, apperr.New(apperr.KindNotFound, "Not Found"))
	})
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:  r.AuthService,
		TokenService: r.TokenService,
	}

	// Register and login get the strict auth profile, keyed by IP and
	// path so their budgets are independent per client.
	strict := r.authLimiter.Middleware(httpx.IPPathKeyExtractor)

	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister), strict))
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin), strict))

	r.Mux.HandleFunc("POST /v1/auth/logout", h.HandleLogout)

	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
		))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		AuthService: r.AuthService,
		UserService: r.UserService,
	}

	authn := httpx.AuthnMiddleware(r.verifier)

	r.Mux.Handle("GET /v1/users", httpx.Chain(http.HandlerFunc(h.HandleList), authn))
	r.Mux.Handle("GET /v1/users/{id}", httpx.Chain(http.HandlerFunc(h.HandleGet), authn))
	r.Mux.Handle("POST /v1/users", httpx.Chain(http.HandlerFunc(h.HandleCreate), authn))
	r.Mux.Handle("PUT /v1/users/{id}", httpx.Chain(http.HandlerFunc(h.HandleUpdate), authn))
	r.Mux.Handle("DELETE /v1/users/{id}", httpx.Chain(http.HandlerFunc(h.HandleDelete), authn))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /health", HealthHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /v1/api/status", StatusHandler(r.env, r.store))
}
