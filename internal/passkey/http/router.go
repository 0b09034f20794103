package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/metrics"
	"github.com/aussiebroadwan/passkey/internal/passkey/service"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/aussiebroadwan/passkey/pkg/httpx"
	"github.com/aussiebroadwan/passkey/pkg/jwtx"
	"github.com/aussiebroadwan/passkey/pkg/slogx"

	_ "github.com/aussiebroadwan/passkey/api/passkey" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RPConfig controls how the relying party is derived for each request.
// Empty ID and Origin fall back to the request's own hostname and origin.
type RPConfig struct {
	Name       string
	ID         string
	Origin     string
	TrustProxy bool
	// PublicURL is the base of invite links. Defaults to the request origin.
	PublicURL string
}

func (c RPConfig) resolve(r *http.Request) service.RelyingParty {
	rp := service.RelyingParty{ID: c.ID, Name: c.Name, Origin: c.Origin}
	if rp.ID == "" {
		rp.ID = httpx.RequestHostname(r, c.TrustProxy)
	}
	if rp.Origin == "" {
		rp.Origin = httpx.RequestOrigin(r, c.TrustProxy)
	}
	if rp.Name == "" {
		rp.Name = rp.ID
	}
	return rp
}

func (c RPConfig) inviteBase(r *http.Request) string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	return c.resolve(r).Origin
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	RP      RPConfig
	CORS    httpx.CORSConfig
	Metrics *metrics.Metrics

	RegistrationService *service.RegistrationService
	LoginService        *service.LoginService
	InviteService       *service.InviteService
	UserService         *service.UserService

	ceremonies map[string]http.Handler
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		CORS:         httpx.DefaultCORS,
	}
}

func (r *Router) ApplyRoutes() {
	// CORS wraps every per-route chain so errors from authn and rate limiting
	// still carry the headers.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(r.CORS),
	}

	r.registerCeremonies()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Passkey Authentication Service API
//	@version		0.1.0
//	@description	Invite-gated WebAuthn passkey registration and login.
//	@description
//	@description				Successful ceremonies return an HS256 session token valid for 30 days.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/passkey
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// Handler wraps the router in OpenTelemetry HTTP instrumentation.
func (r *Router) Handler() http.Handler {
	return otelhttp.NewHandler(r, "passkey",
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	)
}

func (r *Router) registerCeremonies() {
	register := &RegisterHandler{Service: r.RegistrationService, RP: r.RP, Metrics: r.Metrics}
	login := &LoginHandler{Service: r.LoginService, RP: r.RP, Metrics: r.Metrics}
	invite := &InviteHandler{Service: r.InviteService, RP: r.RP, Metrics: r.Metrics}
	user := &UserHandler{Service: r.UserService, Metrics: r.Metrics}

	r.ceremonies = map[string]http.Handler{
		// Prepare steps only create a challenge - moderate rate limit
		"/register/prepare": httpx.Chain(http.HandlerFunc(register.HandlePrepare),
			httpx.RateLimitByIP(httpx.ModerateLimit, r.RP.TrustProxy),
		),
		"/login/prepare": httpx.Chain(http.HandlerFunc(login.HandlePrepare),
			httpx.RateLimitByIP(httpx.ModerateLimit, r.RP.TrustProxy),
		),

		// Finish steps verify signatures - strict rate limit
		"/register/finish": httpx.Chain(http.HandlerFunc(register.HandleFinish),
			httpx.RateLimitByIP(httpx.StrictLimit, r.RP.TrustProxy),
		),
		"/login/finish": httpx.Chain(http.HandlerFunc(login.HandleFinish),
			httpx.RateLimitByIP(httpx.StrictLimit, r.RP.TrustProxy),
		),

		// Admin operations - the services re-check the role against the store
		"/invite/generate": httpx.Chain(invite,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(string(domain.RoleAdmin)),
			httpx.RateLimitByUser(httpx.ModerateLimit, r.RP.TrustProxy),
		),
		"/user/delete": httpx.Chain(http.HandlerFunc(user.HandleDelete),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(string(domain.RoleAdmin)),
			httpx.RateLimitByUser(httpx.ModerateLimit, r.RP.TrustProxy),
		),
	}

	// The ceremonies are routed by path suffix so the service can be mounted
	// under any prefix, e.g. /functions/v1/auth/register/prepare.
	r.Mux.Handle("/", http.HandlerFunc(r.dispatch))
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	for suffix, h := range r.ceremonies {
		if hasPathSuffix(req.URL.Path, suffix) {
			if req.Method != http.MethodPost {
				w.Header().Set("Allow", "POST, OPTIONS")
				httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
				return
			}
			h.ServeHTTP(w, req)
			return
		}
	}
	httpx.WriteError(w, http.StatusNotFound, "not_found", "not found")
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit, r.RP.TrustProxy),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit, r.RP.TrustProxy),
		),
	)

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}
