package account

import (
	"time"

	"github.com/google/uuid"
)

// Account maps to the account table. It is a login identity; clinical and
// administrative attributes live on the staff record linked to it.
type Account struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Superuser    bool      `db:"superuser" json:"superuser"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
