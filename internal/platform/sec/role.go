// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Roles

// UserRole represents the authorization level carried by an access token.
// Voters are anonymous and never hold a token, so only staff roles exist.
type UserRole string

const (
	// Full control over profiles and comments
	RoleAdmin UserRole = "admin"

	// Can hide comments but not manage profiles
	RoleModerator UserRole = "moderator"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() > 0 && r.level() >= target.level()
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 20
	case RoleModerator:
		return 10
	default:
		return 0
	}
}
