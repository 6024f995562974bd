package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	mw "github.com/smeplug/platform/internal/api/middleware"
	"github.com/smeplug/platform/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReq(t *testing.T, body any, tenantID uuid.UUID, pluginID string) *http.Request {
	t.Helper()
	r := jsonReq(t, http.MethodPost, "/api/v1/sme/chat", body, tenantID)
	return r.WithContext(mw.SetPluginID(r.Context(), pluginID))
}

func TestChat_StubMode(t *testing.T) {
	p := NewChatProxy(config.BackendConfig{Timeout: time.Second})

	rec := httptest.NewRecorder()
	p.Handle(rec, chatReq(t, map[string]string{"message": "What are the retention rules?"},
		uuid.New(), "legal-v1"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["response"], "What are the retention rules?")
	assert.Equal(t, "legal-v1", body["plugin_id"])
	assert.Equal(t, true, body["verified"])
	assert.NotEmpty(t, body["session_id"])
	assert.NotEmpty(t, body["citations"])
}

func TestChat_MissingMessage(t *testing.T) {
	p := NewChatProxy(config.BackendConfig{Timeout: time.Second})

	rec := httptest.NewRecorder()
	p.Handle(rec, chatReq(t, map[string]string{}, uuid.New(), "legal-v1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_PluginScopeMismatch(t *testing.T) {
	p := NewChatProxy(config.BackendConfig{Timeout: time.Second})

	rec := httptest.NewRecorder()
	p.Handle(rec, chatReq(t,
		map[string]string{"message": "hi", "plugin_id": "finance-v1"},
		uuid.New(), "legal-v1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
}

func TestChat_ProxiesToBackend(t *testing.T) {
	var captured map[string]any
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sme/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"from backend"}`))
	}))
	defer backend.Close()

	p := NewChatProxy(config.BackendConfig{URL: backend.URL, Timeout: 5 * time.Second})
	tenantID := uuid.New()

	rec := httptest.NewRecorder()
	p.Handle(rec, chatReq(t, map[string]string{"message": "hi"}, tenantID, "legal-v1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "from backend")
	assert.Equal(t, "hi", captured["message"])
	assert.Equal(t, "legal-v1", captured["plugin_id"])
	assert.Equal(t, tenantID.String(), captured["tenant_id"])
}

func TestChat_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close()

	p := NewChatProxy(config.BackendConfig{URL: backend.URL, Timeout: time.Second})

	rec := httptest.NewRecorder()
	p.Handle(rec, chatReq(t, map[string]string{"message": "hi"}, uuid.New(), "legal-v1"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "BACKEND_UNAVAILABLE", errorCode(t, rec))
}

func TestChat_InvalidJSON(t *testing.T) {
	p := NewChatProxy(config.BackendConfig{Timeout: time.Second})

	r := httptest.NewRequest(http.MethodPost, "/api/v1/sme/chat", strings.NewReader("{"))
	r = r.WithContext(mw.SetPluginID(mw.SetTenantID(r.Context(), uuid.New()), "legal-v1"))

	rec := httptest.NewRecorder()
	p.Handle(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
