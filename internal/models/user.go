package models

import "time"

// User roles
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

type User struct {
	ID           string    `json:"id" example:"6b1d3c52-7f1e-4b7a-9a55-1f2d7c3e9a10"`
	Username     string    `json:"username" example:"alice"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role" example:"buyer"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	return role == RoleBuyer || role == RoleSeller
}
