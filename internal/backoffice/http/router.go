package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/webshoplabs/backoffice/internal/backoffice/service"
	"github.com/webshoplabs/backoffice/internal/backoffice/store"
	"github.com/webshoplabs/backoffice/pkg/httpx"
	"github.com/webshoplabs/backoffice/pkg/jwtx"
	"github.com/webshoplabs/backoffice/pkg/slogx"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/webshoplabs/backoffice/api/backoffice" // Swagger docs
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       jwtx.Signer
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	CredentialService *service.CredentialService
}

func NewRouter(
	signer jwtx.Signer,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		verifier:     verifier,
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
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Webshop Backoffice API
//	@version		0.1.0
//	@description	Credential lifecycle service for webshop staff accounts: registration,
//	@description	login, and password maintenance with single-use emailed reset tokens.
//
//	@contact.name				Webshop Labs
//	@contact.url				https://github.com/webshoplabs/backoffice
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
//	@description				JWT session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	// POST /user/register - strict rate limit by IP (public signup endpoint)
	registerHandler := &RegisterHandler{CredentialService: r.CredentialService}
	r.Mux.Handle("POST /user/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /user/login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{CredentialService: r.CredentialService}
	r.Mux.Handle("POST /user/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /user/forgot-password - strict rate limit by IP (sends mail)
	forgotHandler := &ForgotPasswordHandler{CredentialService: r.CredentialService}
	r.Mux.Handle("POST /user/forgot-password",
		httpx.Chain(forgotHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /user/reset-password - strict rate limit by IP (token guessing)
	resetHandler := &ResetPasswordHandler{CredentialService: r.CredentialService}
	r.Mux.Handle("POST /user/reset-password",
		httpx.Chain(resetHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /user/update-password - authenticated, moderate rate limit by user
	updateHandler := &UpdatePasswordHandler{CredentialService: r.CredentialService}
	securedUpdate := httpx.Chain(updateHandler,
		httpx.AuthnMiddleware(r.verifier), // verify JWT (iss/exp)
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.Mux.Handle("POST /user/update-password", securedUpdate)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
