package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/smeplug/platform/internal/api/response"
)

// NewBillingWebhookHandler returns an http.HandlerFunc for
// POST /api/v1/billing/webhook. Mock mode: events are validated for
// shape, logged, and acknowledged. Signature verification against a
// Stripe endpoint secret comes with the real billing integration.
func NewBillingWebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Stripe-Signature") == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_SIGNATURE",
				"Missing Stripe-Signature header", nil)
			return
		}

		var event struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if event.ID == "" || event.Type == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"id and type are required", nil)
			return
		}

		slog.Info("billing event received", "event_id", event.ID, "event_type", event.Type)
		response.JSON(w, map[string]any{"received": true})
	}
}
