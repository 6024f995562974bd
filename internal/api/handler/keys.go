package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/smeplug/platform/internal/api/middleware"
	"github.com/smeplug/platform/internal/api/response"
	"github.com/smeplug/platform/internal/keys"
	"github.com/smeplug/platform/pkg/models"
)

// KeyService is the lifecycle interface the key handlers depend on.
type KeyService interface {
	Create(ctx context.Context, tenantID uuid.UUID, name, pluginID string) (*keys.CreatedKey, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error)
	Revoke(ctx context.Context, tenantID uuid.UUID, keyID uuid.UUID) error
}

// keyView is the listing projection. It never carries hash or plaintext.
type keyView struct {
	ID          uuid.UUID  `json:"id"`
	DisplayName string     `json:"displayName"`
	PluginScope string     `json:"pluginScope"`
	Prefix      string     `json:"prefix"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastUsedAt  *time.Time `json:"lastUsedAt"`
	RevokedAt   *time.Time `json:"revokedAt"`
}

// NewCreateKeyHandler returns an http.HandlerFunc for POST /api/v1/keys.
// The response is the only place the plaintext key ever appears.
func NewCreateKeyHandler(svc KeyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing tenant", nil)
			return
		}

		var req struct {
			DisplayName string `json:"displayName"`
			PluginScope string `json:"pluginScope"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.DisplayName == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "displayName is required", nil)
			return
		}
		if req.PluginScope == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "pluginScope is required", nil)
			return
		}

		created, err := svc.Create(r.Context(), tenantID, req.DisplayName, req.PluginScope)
		if err != nil {
			switch {
			case errors.Is(err, keys.ErrInvalidInput):
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			default:
				// Includes generation exhaustion; details stay in server logs.
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"Failed to create key", nil)
			}
			return
		}

		response.Created(w, map[string]any{
			"key":         created.Plaintext,
			"prefix":      created.Key.KeyPrefix,
			"pluginScope": created.Key.PluginID,
			"displayName": created.Key.Name,
		})
	}
}

// NewListKeysHandler returns an http.HandlerFunc for GET /api/v1/keys.
func NewListKeysHandler(svc KeyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing tenant", nil)
			return
		}

		list, err := svc.List(r.Context(), tenantID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list keys", nil)
			return
		}

		views := make([]keyView, 0, len(list))
		for _, k := range list {
			views = append(views, keyView{
				ID:          k.ID,
				DisplayName: k.Name,
				PluginScope: k.PluginID,
				Prefix:      k.KeyPrefix,
				CreatedAt:   k.CreatedAt,
				LastUsedAt:  k.LastUsedAt,
				RevokedAt:   k.RevokedAt,
			})
		}

		response.JSON(w, map[string]any{"keys": views})
	}
}

// NewRevokeKeyHandler returns an http.HandlerFunc for DELETE /api/v1/keys/{keyID}.
// Revoking an already-revoked key succeeds; absent and foreign keys both 404.
func NewRevokeKeyHandler(svc KeyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing tenant", nil)
			return
		}

		keyID, err := uuid.Parse(chi.URLParam(r, "keyID"))
		if err != nil {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Key not found", nil)
			return
		}

		if err := svc.Revoke(r.Context(), tenantID, keyID); err != nil {
			if errors.Is(err, keys.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Key not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to revoke key", nil)
			return
		}

		response.JSON(w, map[string]any{"success": true})
	}
}
