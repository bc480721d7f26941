package models

import (
	"time"
)

// UserStatus is the account state of a user.
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// UserDB represents a row of the users table
type UserDB struct {
	ID           int64      `json:"id" db:"id"`                 // Primary key
	Name         string     `json:"name" db:"name"`             // Display name
	Email        string     `json:"email" db:"email"`           // Unique login key
	PasswordHash string     `json:"-" db:"password_hash"`       // bcrypt digest
	Status       UserStatus `json:"status" db:"status"`         // active or blocked
	LastLogin    *time.Time `json:"last_login" db:"last_login"` // Nil until first login
	CreatedAt    time.Time  `json:"created_at" db:"created_at"` // Creation timestamp
}

// IsBlocked reports whether the account is blocked.
func (u *UserDB) IsBlocked() bool {
	return u.Status == UserStatusBlocked
}

// User is the public projection returned by the listing endpoint.
// swagger:model User
type User struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	LastLogin *time.Time `json:"last_login" db:"last_login"`
	Status    UserStatus `json:"status" db:"status"`
}
