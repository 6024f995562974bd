package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/smeplug/platform/internal/api/response"
	"github.com/smeplug/platform/internal/cache"
	"github.com/smeplug/platform/pkg/models"
)

const catalogCacheTTL = 5 * time.Minute

// Catalog is the expert plugin marketplace. Static for now; a plugin
// registry service replaces this once third-party plugins ship.
var Catalog = []models.Plugin{
	{ID: "legal-v1", Name: "Legal SME", Domain: "Compliance & Contracts", Score: 0.93, Price: 500, Status: "active"},
	{ID: "healthcare-v1", Name: "Healthcare SME", Domain: "Clinical & Compliance", Score: 0.91, Price: 500, Status: "active"},
	{ID: "engineering-v1", Name: "Engineering SME", Domain: "Structural & Safety", Score: 0.91, Price: 500, Status: "available"},
	{ID: "finance-v1", Name: "Finance SME", Domain: "Banking & Risk", Score: 0.89, Price: 500, Status: "available"},
	{ID: "education-v1", Name: "Education SME", Domain: "Curriculum & Assessment", Score: 0.88, Price: 500, Status: "available"},
	{ID: "cyber-v1", Name: "Cybersecurity SME", Domain: "Threat & Compliance", Score: 0.90, Price: 500, Status: "available"},
}

// NewListPluginsHandler returns an http.HandlerFunc for GET /api/v1/plugins.
// The catalog is cached in redis so marketplace page loads skip the render.
func NewListPluginsHandler(c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := cache.PluginCatalogKey()

		if cached, ok, err := c.Get(r.Context(), key); err == nil && ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}

		body, err := json.Marshal(map[string]any{"plugins": Catalog})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load plugin catalog", nil)
			return
		}

		// Best effort; serving the catalog never depends on redis.
		_ = c.Set(r.Context(), key, body, catalogCacheTTL)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

// PluginExists reports whether id names a catalog plugin.
func PluginExists(id string) bool {
	for _, p := range Catalog {
		if p.ID == id {
			return true
		}
	}
	return false
}
