package model

// Principal is the authenticated identity performing an operation.
// It is passed explicitly into every guarded call.
type Principal struct {
	ID    UserID
	Roles []Role
}

// NewPrincipal builds a principal with a normalized role set.
// Duplicates are removed and a principal with no roles is given RoleUser.
func NewPrincipal(id UserID, roles ...Role) Principal {
	seen := make(map[Role]struct{}, len(roles))
	normalized := make([]Role, 0, len(roles))
	for _, r := range roles {
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		normalized = append(normalized, r)
	}
	if len(normalized) == 0 {
		normalized = append(normalized, RoleUser)
	}
	return Principal{ID: id, Roles: normalized}
}

// IsAuthenticated reports whether the principal carries an identity
func (p Principal) IsAuthenticated() bool {
	return p.ID != ""
}

// HasRole reports whether the principal holds the role
func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal holds RoleAdmin
func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}
