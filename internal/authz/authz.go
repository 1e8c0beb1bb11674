// Package authz holds the access rules for protected resources. Every rule is a plain
// function of the caller and the resource owner(s); nil means allowed.
package authz

import "github.com/journeymate/backend/internal/apperrors"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Caller is the authenticated user making the request.
type Caller struct {
	ID       uint
	UID      string
	Username string
	Roles    []string
}

func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c Caller) IsAdmin() bool { return c.HasRole(RoleAdmin) }

func RequireAdmin(c Caller) error {
	if c.IsAdmin() {
		return nil
	}
	return apperrors.Forbidden("admin role required")
}

// SelfOrAdmin allows a user acting on their own data, or any admin.
func SelfOrAdmin(c Caller, userID uint) error {
	if c.IsAdmin() || c.ID == userID {
		return nil
	}
	return apperrors.Forbidden("you can only access your own data")
}

// OwnerOrAdmin allows the owner of a resource or any admin.
func OwnerOrAdmin(c Caller, ownerID uint) error {
	return AnyOf(c, ownerID)
}

// AnyOf allows admins and any caller whose id is among ids.
func AnyOf(c Caller, ids ...uint) error {
	if c.IsAdmin() {
		return nil
	}
	for _, id := range ids {
		if id != 0 && id == c.ID {
			return nil
		}
	}
	return apperrors.Forbidden("you are not allowed to access this resource")
}
