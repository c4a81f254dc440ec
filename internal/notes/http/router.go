package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/inklingapp/inkling/internal/notes/service"
	"github.com/inklingapp/inkling/internal/notes/store"
	"github.com/inklingapp/inkling/pkg/httpx"
	"github.com/inklingapp/inkling/pkg/jwtx"
	"github.com/inklingapp/inkling/pkg/slogx"
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

	store          store.Store
	SessionService *service.SessionService
	NotesService   *service.NotesService
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

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerNotes()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn verifies the bearer token and re-resolves its subject, so a token
// for a deleted account stops working before its natural expiry.
func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.verifier, r.SessionService.ResolveSubject)
}

func (r *Router) registerAuth() {
	// Credential endpoints carry the strict per-IP limit; they are the brute
	// force surface.
	r.Mux.Handle("POST /auth/signup",
		httpx.Chain(&SignupHandler{SessionService: r.SessionService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /auth/login",
		httpx.Chain(&LoginHandler{SessionService: r.SessionService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(&RefreshHandler{SessionService: r.SessionService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Logout authenticates by the refresh token in its body, not a bearer
	// token, so an expired access token can still end the session.
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(&LogoutHandler{SessionService: r.SessionService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /auth/logout-all",
		httpx.Chain(&LogoutAllHandler{SessionService: r.SessionService},
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerNotes() {
	h := &NotesHandler{NotesService: r.NotesService}

	reads := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, r.authn(), httpx.RateLimitByUser(httpx.LenientLimit))
	}
	writes := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, r.authn(), httpx.RateLimitByUser(httpx.ModerateLimit))
	}

	r.Mux.Handle("POST /notes", writes(h.Create))
	r.Mux.Handle("GET /notes", reads(h.List))
	r.Mux.Handle("GET /notes/{id}", reads(h.Get))
	r.Mux.Handle("PUT /notes/{id}", writes(h.Update))
	r.Mux.Handle("DELETE /notes/{id}", writes(h.Delete))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer))
}
