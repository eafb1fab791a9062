package domain

import (
	"strings"
	"time"
)

// Role is the dashboard a user is allowed to act in.
type Role string

const (
	RoleFarmer      Role = "farmer"
	RoleInsurer     Role = "insurer"
	RoleSurveyor    Role = "surveyor"
	RoleUnderwriter Role = "underwriter"
	RoleGovernment  Role = "government"
	RoleAdmin       Role = "admin"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleFarmer, RoleInsurer, RoleSurveyor, RoleUnderwriter, RoleGovernment, RoleAdmin}

// ParseRole converts a raw string into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// User is the currently signed-in actor as seen by the portal.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Role        Role   `json:"role"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
	FullName    string `json:"fullName,omitempty"`
}

// DirectoryUser is an entry of the local user directory used by the mock
// auth backend. Usernames are unique.
type DirectoryUser struct {
	ID           string    `json:"id" bson:"user_id"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"passwordHash" bson:"password_hash"`
	Role         Role      `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

// Profile strips credentials from a directory entry.
func (d DirectoryUser) Profile() User {
	return User{ID: d.ID, Username: d.Username, Role: d.Role}
}

// Session is the outcome of a successful login or registration.
type Session struct {
	Token string `json:"-"`
	User  User   `json:"user"`
}
