package keys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/smeplug/platform/internal/store"
)

// Identity is the result of a successful authentication.
type Identity struct {
	TenantID uuid.UUID
	PluginID string
}

// Authenticator resolves presented bearer credentials to a tenant and
// plugin scope.
type Authenticator struct {
	store store.Store
}

// NewAuthenticator creates an Authenticator backed by s.
func NewAuthenticator(s store.Store) *Authenticator {
	return &Authenticator{store: s}
}

// Authenticate rehashes the presented key and resolves it via a point
// lookup on the digest index. Malformed input is rejected with a single
// uniform check before any store access. Revoked and unknown keys both
// map to 401 at the HTTP boundary; they are distinguished only here and
// in logs.
func (a *Authenticator) Authenticate(ctx context.Context, rawKey string) (*Identity, error) {
	if !wellFormed(rawKey) {
		return nil, ErrInvalidCredential
	}

	key, err := a.store.GetAPIKeyByHash(ctx, HashKey(rawKey))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, fmt.Errorf("lookup credential: %w", err)
	}

	if key.Revoked() {
		slog.Info("rejected revoked api key",
			"tenant_id", key.TenantID,
			"key_prefix", key.KeyPrefix,
		)
		return nil, ErrRevoked
	}

	// Best effort; must never block or fail the authentication decision.
	go func(id uuid.UUID) {
		if err := a.store.UpdateAPIKeyLastUsed(context.WithoutCancel(ctx), id); err != nil {
			slog.Warn("update api key last used", "error", err)
		}
	}(key.ID)

	return &Identity{TenantID: key.TenantID, PluginID: key.PluginID}, nil
}

// wellFormed checks the exact key shape: namespace literal followed by
// 64 lowercase hex characters. The check is uniform for all inputs so
// the pre-lookup path leaks nothing about why a key was rejected.
func wellFormed(rawKey string) bool {
	if len(rawKey) != RawKeyLen {
		return false
	}
	if !strings.HasPrefix(rawKey, Namespace) {
		return false
	}
	for _, c := range rawKey[len(Namespace):] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
