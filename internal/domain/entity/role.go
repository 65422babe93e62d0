// Package entity contains the core business objects of the project.
package entity

// Role represents the type of role an identity can have in the system.
type Role string

const (
	// RoleUser indicates a regular reader account.
	RoleUser Role = "user"
	// RoleAdmin indicates an administrator account.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role grants administrator access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// RoleFromString converts a string to a Role, falling back to RoleUser for
// unknown values so a corrupted claim can never grant elevated access.
func RoleFromString(s string) Role {
	role := Role(s)
	if !role.IsValid() {
		return RoleUser
	}

	return role
}
