package keys_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smeplug/platform/internal/store"
	"github.com/smeplug/platform/pkg/models"
)

// fakeStore is an in-memory store.Store for unit tests. It mirrors the
// Postgres implementation's projection rules: ListAPIKeys and GetAPIKey
// return copies with the hash blanked, and RevokeAPIKey only fires when
// revoked_at is still null.
type fakeStore struct {
	mu   sync.Mutex
	keys map[uuid.UUID]*models.APIKey

	createErrs []error // consumed one per CreateAPIKey call
	lastUsed   chan uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		keys:     make(map[uuid.UUID]*models.APIKey),
		lastUsed: make(chan uuid.UUID, 16),
	}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) CreateTenant(context.Context, *models.Tenant) error { return nil }
func (f *fakeStore) GetTenant(context.Context, uuid.UUID) (*models.Tenant, error) {
	return nil, store.ErrNotFound
}
func (f *fakeStore) CreateUser(context.Context, *models.User) error { return nil }
func (f *fakeStore) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}

	for _, existing := range f.keys {
		if existing.KeyHash == key.KeyHash {
			return store.ErrDuplicateKey
		}
	}
	cp := *key
	f.keys[key.ID] = &cp
	return nil
}

func (f *fakeStore) ListAPIKeys(_ context.Context, tenantID uuid.UUID) ([]*models.APIKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.APIKey
	for _, k := range f.keys {
		if k.TenantID == tenantID {
			cp := *k
			cp.KeyHash = ""
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAPIKey(_ context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.APIKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k, ok := f.keys[id]
	if !ok || k.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	cp := *k
	cp.KeyHash = ""
	return &cp, nil
}

func (f *fakeStore) GetAPIKeyByHash(_ context.Context, hash string) (*models.APIKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, k := range f.keys {
		if k.KeyHash == hash {
			cp := *k
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) RevokeAPIKey(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	k, ok := f.keys[id]
	if !ok || k.RevokedAt != nil {
		return store.ErrNotFound
	}
	now := time.Now().UTC()
	k.RevokedAt = &now
	return nil
}

func (f *fakeStore) UpdateAPIKeyLastUsed(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if k, ok := f.keys[id]; ok {
		now := time.Now().UTC()
		k.LastUsedAt = &now
	}
	select {
	case f.lastUsed <- id:
	default:
	}
	return nil
}

// revokedAt reads a key's revocation timestamp directly, bypassing projections.
func (f *fakeStore) revokedAt(id uuid.UUID) *time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	if k, ok := f.keys[id]; ok {
		return k.RevokedAt
	}
	return nil
}

// storedHash reads a key's hash directly, bypassing projections.
func (f *fakeStore) storedHash(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if k, ok := f.keys[id]; ok {
		return k.KeyHash
	}
	return ""
}
