package models

import "time"

// UserRole представляет роли админ-пользователей, соответствующие ENUM в БД.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleEditor UserRole = "editor"
)

// Valid reports whether the role belongs to the closed role set.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleEditor
}

type User struct {
	ID           int        `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         UserRole   `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// AuthUser is the authenticated identity passed explicitly through the call
// chain. Handlers build it from verified JWT claims; services never read
// identity from ambient context.
type AuthUser struct {
	ID    int      `json:"id"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// CanOverridePoints reports whether the user may set result points manually.
func (u AuthUser) CanOverridePoints() bool {
	return u.Role == RoleAdmin
}
