package keys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/smeplug/platform/internal/store"
	"github.com/smeplug/platform/pkg/models"
)

// maxGenerationAttempts bounds retries on hash collision. A collision
// requires two 256-bit secrets to hash identically, so more than one
// attempt should never be needed in practice.
const maxGenerationAttempts = 3

// CreatedKey pairs the one-time plaintext with the stored metadata.
type CreatedKey struct {
	Plaintext string
	Key       *models.APIKey
}

// Service orchestrates key creation, listing, and revocation.
type Service struct {
	store store.Store
}

// NewService creates a key lifecycle Service backed by s.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Create generates and stores a new key for the tenant. The returned
// plaintext is disclosed to the caller exactly once; no other operation
// ever returns or logs it.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, name, pluginID string) (*CreatedKey, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if pluginID == "" {
		return nil, fmt.Errorf("%w: plugin_id is required", ErrInvalidInput)
	}

	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		secret, err := Generate()
		if err != nil {
			return nil, fmt.Errorf("generate key: %w", err)
		}

		key := &models.APIKey{
			ID:        uuid.New(),
			TenantID:  tenantID,
			PluginID:  pluginID,
			Name:      name,
			KeyHash:   secret.Hash,
			KeyPrefix: secret.Prefix,
			CreatedAt: time.Now().UTC(),
		}

		err = s.store.CreateAPIKey(ctx, key)
		if err == nil {
			key.KeyHash = ""
			return &CreatedKey{Plaintext: secret.Plaintext, Key: key}, nil
		}
		if errors.Is(err, store.ErrDuplicateKey) {
			slog.Error("api key hash collision",
				"tenant_id", tenantID,
				"attempt", attempt,
			)
			continue
		}
		return nil, fmt.Errorf("store key: %w", err)
	}

	slog.Error("api key generation exhausted", "tenant_id", tenantID)
	return nil, ErrGenerationExhausted
}

// List returns the tenant's keys, newest first, without hash material.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error) {
	keys, err := s.store.ListAPIKeys(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

// Revoke permanently disables a key owned by the tenant. Revoking an
// already-revoked key succeeds without changing the original timestamp.
// Absent and foreign keys both return ErrNotFound.
func (s *Service) Revoke(ctx context.Context, tenantID uuid.UUID, keyID uuid.UUID) error {
	key, err := s.store.GetAPIKey(ctx, tenantID, keyID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup key: %w", err)
	}

	if key.Revoked() {
		return nil
	}

	err = s.store.RevokeAPIKey(ctx, key.ID)
	if errors.Is(err, store.ErrNotFound) {
		// Lost a race with a concurrent revoke; the key is revoked either way.
		return nil
	}
	if err != nil {
		return fmt.Errorf("revoke key: %w", err)
	}
	return nil
}
