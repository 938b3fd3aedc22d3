package model

import "github.com/google/uuid"

// Roles carried in the bearer credential.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is the authenticated principal resolved from a bearer credential.
// Account management itself lives in a separate service; this is all the
// order core ever needs to know about a user.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
