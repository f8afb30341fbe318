package model

// Role is a user's privilege level. Roles are totally ordered:
// student < moderator < admin < superadmin.
type Role string

const (
	RoleStudent    Role = "student"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

var roleRank = map[Role]int{
	RoleStudent:    1,
	RoleModerator:  2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Rank returns the position of r in the role order. Unknown roles rank 0.
func (r Role) Rank() int {
	return roleRank[r]
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// AtLeast reports whether r grants every capability of min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}
