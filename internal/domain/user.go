package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered customer or administrator
type User struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Phone        *string   `db:"phone"`
	Address      *string   `db:"address"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
}

// Identity is the caller bound to a session
type Identity struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// CanAccess reports whether the identity may act on resources owned by ownerID
func (i Identity) CanAccess(ownerID uuid.UUID) bool {
	return i.IsAdmin || i.UserID == ownerID
}
