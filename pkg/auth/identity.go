// Package auth registers CampusMail accounts, checks credentials, and issues the session tokens
// that carry a caller's Identity between requests.
package auth

import (
	"fmt"
	"strings"
)

// Role decides which parts of CampusMail an account may use.
type Role string

// Account roles.
const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// ParseRole accepts a role name in any case.  "Department Admin", as offered by the
// registration form, is treated as staff; full admin rights only come from configuration.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleStudent, RoleLecturer, RoleStaff, RoleAdmin:
		return r, nil
	case "department admin":
		return RoleStaff, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Identity is the authenticated caller of a request.
type Identity struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
}

// IsAdmin reports whether the identity may use the admin dashboard.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// Home returns the UI path the identity lands on after login.
func (id Identity) Home() string {
	if id.IsAdmin() {
		return "/admin"
	}
	return "/dashboard"
}
