// Package access computes a user's role on a shopping list and decides
// whether that role is sufficient for an action.
package access

import (
	"encoding/json"
	"fmt"
)

// Role is a privilege level on a single list. Roles are totally ordered:
// Visitor < Member < Owner < Admin.
type Role int

const (
	Visitor Role = iota
	Member
	Owner
	Admin
)

var roleNames = [...]string{
	Visitor: "visitor",
	Member:  "member",
	Owner:   "owner",
	Admin:   "admin",
}

func (r Role) String() string {
	if r < Visitor || r > Admin {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// MarshalJSON encodes the role by name.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// ParseRole converts a role name to a Role.
func ParseRole(name string) (Role, error) {
	for r, n := range roleNames {
		if n == name {
			return Role(r), nil
		}
	}
	return Visitor, fmt.Errorf("unknown role %q", name)
}

// ForbiddenError is returned when a role is below the one an action requires.
type ForbiddenError struct {
	Required Role
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("Forbidden: This action requires %s privileges.", e.Required)
}

// Authorize allows iff resolved is at least required. It never touches storage.
func Authorize(resolved, required Role) error {
	if resolved >= required {
		return nil
	}
	return &ForbiddenError{Required: required}
}
