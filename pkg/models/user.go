package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a dashboard login belonging to a tenant. Passwords are stored
// as bcrypt hashes only.
type User struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	TenantID     uuid.UUID `db:"tenant_id"     json:"tenant_id"`
	Email        string    `db:"email"         json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
}
