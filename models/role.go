package models

import (
	"fmt"
	"strings"
)

// UserRole is the marketplace role stored in profiles.user_type. The
// profiles row itself is owned by the handle_new_user trigger; this service
// only ever reads that column.
type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleHustler  UserRole = "HUSTLER"
	RoleAdmin    UserRole = "ADMIN"
)

// DefaultRole is assigned by the signup trigger when no user_type is supplied
const DefaultRole = RoleCustomer

// ParseUserRole parses a role case-insensitively and returns its canonical form
func ParseUserRole(s string) (UserRole, error) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(s)))
	if !role.IsValid() {
		return "", fmt.Errorf("unknown user role: %q", s)
	}
	return role, nil
}

// IsValid reports whether r is one of the known roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleCustomer, RoleHustler, RoleAdmin:
		return true
	}
	return false
}

// SelfAssignable reports whether a user may pick this role at signup
func (r UserRole) SelfAssignable() bool {
	return r == RoleCustomer || r == RoleHustler
}

func (r UserRole) String() string {
	return string(r)
}
