package models

type UserRole string

const (
	UserRoleBuyer  UserRole = "BUYER"
	UserRoleSeller UserRole = "SELLER"
	UserRoleAdmin  UserRole = "ADMIN"
)

// Principal is the caller identity carried by a verified access token.
type Principal struct {
	UserID string
	Role   UserRole
}
