package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/smeplug/platform/internal/api/response"
	"github.com/smeplug/platform/internal/auth"
	"github.com/smeplug/platform/internal/keys"
)

// Auth provides both authentication surfaces: dashboard session cookies
// and runtime API-key bearer tokens.
type Auth struct {
	sessions      *auth.Sessions
	authenticator *keys.Authenticator
}

// NewAuth creates the authentication middleware.
func NewAuth(sessions *auth.Sessions, authenticator *keys.Authenticator) *Auth {
	return &Auth{sessions: sessions, authenticator: authenticator}
}

// Session validates the sme_session cookie and sets tenant_id and
// user_id in the request context. Dashboard routes only.
func (a *Auth) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.CookieName)
		if err != nil || cookie.Value == "" {
			response.Error(w, http.StatusUnauthorized,
				"UNAUTHORIZED", "Missing session", nil)
			return
		}

		claims, err := a.sessions.Verify(cookie.Value)
		if err != nil {
			response.Error(w, http.StatusUnauthorized,
				"UNAUTHORIZED", "Invalid or expired session", nil)
			return
		}

		ctx := SetTenantID(r.Context(), claims.TenantID)
		ctx = SetUserID(ctx, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// APIKey validates the Bearer credential, resolves it to a tenant and
// plugin scope, and sets tenant_id, plugin_id, and key_prefix in the
// request context. Unknown and revoked keys get the same response body.
func (a *Auth) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := extractBearerToken(r)
		if rawKey == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_KEY", "Missing or invalid Authorization header", nil)
			return
		}

		identity, err := a.authenticator.Authenticate(r.Context(), rawKey)
		if err != nil {
			if errors.Is(err, keys.ErrInvalidCredential) || errors.Is(err, keys.ErrRevoked) {
				response.Error(w, http.StatusUnauthorized,
					"INVALID_KEY", "Invalid API key", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to validate API key", nil)
			return
		}

		ctx := SetTenantID(r.Context(), identity.TenantID)
		ctx = SetPluginID(ctx, identity.PluginID)
		ctx = setKeyPrefix(ctx, rawKey[:len(keys.Namespace)+8])
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
