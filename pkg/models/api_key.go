package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is a bearer credential scoped to a single expert plugin.
// The raw key is shown once at creation; only the SHA-256 digest is stored.
type APIKey struct {
	ID         uuid.UUID  `db:"id"           json:"id"`
	TenantID   uuid.UUID  `db:"tenant_id"    json:"tenant_id"`
	PluginID   string     `db:"plugin_id"    json:"plugin_id"`
	Name       string     `db:"name"         json:"name"`
	KeyHash    string     `db:"key_hash"     json:"-"`
	KeyPrefix  string     `db:"key_prefix"   json:"key_prefix"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `db:"revoked_at"   json:"revoked_at"`
	CreatedAt  time.Time  `db:"created_at"   json:"created_at"`
}

// Revoked reports whether the key has been permanently disabled.
func (k *APIKey) Revoked() bool {
	return k.RevokedAt != nil
}
