package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/smeplug/platform/internal/api/middleware"
	"github.com/smeplug/platform/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	RegisterHandler http.HandlerFunc
	LoginHandler    http.HandlerFunc
	LogoutHandler   http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc

	ListPluginsHandler    http.HandlerFunc
	ChatHandler           http.HandlerFunc
	BillingWebhookHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
// Dashboard routes sit behind the session cookie; the runtime chat
// surface sits behind API-key auth and rate limiting.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public routes
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Get("/api/v1/plugins", orNotImplemented(deps.ListPluginsHandler))
	r.Post("/api/v1/auth/register", orNotImplemented(deps.RegisterHandler))
	r.Post("/api/v1/auth/login", orNotImplemented(deps.LoginHandler))
	r.Post("/api/v1/auth/logout", orNotImplemented(deps.LogoutHandler))
	r.Post("/api/v1/billing/webhook", orNotImplemented(deps.BillingWebhookHandler))

	// Dashboard routes (session cookie)
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Session)

		r.Post("/api/v1/keys", orNotImplemented(deps.CreateKeyHandler))
		r.Get("/api/v1/keys", orNotImplemented(deps.ListKeysHandler))
		r.Delete("/api/v1/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
	})

	// Runtime routes (API key bearer token)
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.APIKey)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/sme/chat", orNotImplemented(deps.ChatHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
