package auth

import (
	"errors"
	"time"
)

// Role separates back-office staff from portal customers.
type Role string

const (
	RoleAdmin      Role = "admin"
	RolePortalUser Role = "portal_user"
)

// User represents an authenticated account. Portal users carry the contact
// they are bound to; admins have none.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         Role       `json:"role"`
	ContactID    *int64     `json:"contact_id,omitempty"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ErrDuplicateEmail indicates the email is already registered.
var ErrDuplicateEmail = errors.New("auth: email already registered")
