package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smeplug/platform/internal/api/response"
	"github.com/smeplug/platform/internal/auth"
	"github.com/smeplug/platform/internal/store"
	"github.com/smeplug/platform/pkg/models"
)

const minPasswordLen = 8

// AuthHandlers serves registration, login, and logout for the dashboard.
type AuthHandlers struct {
	store    store.Store
	sessions *auth.Sessions
	secure   bool
}

// NewAuthHandlers creates the auth handlers. secure controls the cookie's
// Secure flag and should be true outside development.
func NewAuthHandlers(s store.Store, sessions *auth.Sessions, secure bool) *AuthHandlers {
	return &AuthHandlers{store: s, sessions: sessions, secure: secure}
}

// Register handles POST /api/v1/auth/register. It creates a tenant and
// its first user, then issues a session cookie.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Company  string `json:"company"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "a valid email is required", nil)
		return
	}
	if len(req.Password) < minPasswordLen {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "password must be at least 8 characters", nil)
		return
	}
	if req.Company == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "company is required", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed", nil)
		return
	}

	now := time.Now().UTC()
	tenant := &models.Tenant{
		ID:        uuid.New(),
		Name:      req.Company,
		Plan:      "starter",
		CreatedAt: now,
	}
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
	}

	if err := h.store.CreateTenant(r.Context(), tenant); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed", nil)
		return
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			response.Error(w, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed", nil)
		return
	}

	if err := h.issueSession(w, user, tenant.Plan); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed", nil)
		return
	}

	slog.Info("tenant registered", "tenant_id", tenant.ID, "email", user.Email)
	response.Created(w, map[string]any{
		"tenantId": tenant.ID,
		"email":    user.Email,
		"plan":     tenant.Plan,
	})
}

// Login handles POST /api/v1/auth/login. Bad email and bad password get
// the same response.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "email and password are required", nil)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
		return
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed", nil)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
		return
	}

	tenant, err := h.store.GetTenant(r.Context(), user.TenantID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed", nil)
		return
	}

	if err := h.issueSession(w, user, tenant.Plan); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed", nil)
		return
	}

	response.JSON(w, map[string]any{
		"tenantId": user.TenantID,
		"email":    user.Email,
		"plan":     tenant.Plan,
	})
}

// Logout handles POST /api/v1/auth/logout by expiring the cookie.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	response.JSON(w, map[string]any{"success": true})
}

func (h *AuthHandlers) issueSession(w http.ResponseWriter, user *models.User, plan string) error {
	token, err := h.sessions.Issue(user.ID, user.TenantID, user.Email, plan)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
