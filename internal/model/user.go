package model

import (
	"strings"
	"time"
)

// UserID is the stable opaque identifier issued by the identity provider
type UserID string

// Role is a member of the fixed role set a user may hold
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// ParseRole maps a role name to a known Role, ignoring case
func ParseRole(name string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return RoleAdmin, true
	case "user":
		return RoleUser, true
	default:
		return "", false
	}
}

// User is reference data about someone who has authenticated against the API.
// The identity provider owns it; the tracker only records what it last saw.
type User struct {
	ID          UserID
	DisplayName string
	Roles       []Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasRole reports whether the user holds the role
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
