package domain

import "github.com/google/uuid"

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the caller may act on any record.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdministrator }

// CanAccess reports whether p may read or change a record owned by owner.
func (p Principal) CanAccess(owner uuid.UUID) bool {
	return p.IsAdmin() || (p.UserID != uuid.Nil && p.UserID == owner)
}
