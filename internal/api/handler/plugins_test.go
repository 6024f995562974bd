package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCache is a minimal in-memory cache.Cache for handler tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) Ping(context.Context) error { return nil }

func (c *memCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 0, nil
}

func TestListPlugins(t *testing.T) {
	h := NewListPluginsHandler(newMemCache())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/plugins", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	plugins, ok := body["plugins"].([]any)
	require.True(t, ok)
	assert.Len(t, plugins, len(Catalog))

	first := plugins[0].(map[string]any)
	assert.Equal(t, "legal-v1", first["id"])
	assert.Equal(t, "Legal SME", first["name"])
}

func TestListPlugins_ServesFromCache(t *testing.T) {
	c := newMemCache()
	require.NoError(t, c.Set(context.Background(), "plugins:catalog",
		[]byte(`{"plugins":[{"id":"cached-v1"}]}`), time.Minute))

	h := NewListPluginsHandler(c)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/plugins", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cached-v1")
}

func TestListPlugins_PopulatesCache(t *testing.T) {
	c := newMemCache()
	h := NewListPluginsHandler(c)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/plugins", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cached, ok, err := c.Get(context.Background(), "plugins:catalog")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, string(cached), "legal-v1")
}

func TestPluginExists(t *testing.T) {
	assert.True(t, PluginExists("legal-v1"))
	assert.False(t, PluginExists("nonexistent-v1"))
}
