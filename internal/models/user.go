package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account. Secret is stored verbatim; it never leaves
// the identity store; callers only ever see the Session view.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the secretless view of a User, held as the current-session
// pointer and returned to callers.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session strips the secret from a user.
func (u *User) Session() Session {
	return Session{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
