package domain

// Role is the role an authenticated admin carries in their token.
type Role string

// Admin roles.
const (
	RoleSuperAdmin  Role = "super_admin"
	RoleEngineer    Role = "engineer"
	RoleSupportLead Role = "support_lead"
	RoleSupport     Role = "support"
)

// CanWriteIncidents reports whether the role may create or modify
// incidents. Unrecognized roles get no write access.
func (r Role) CanWriteIncidents() bool {
	switch r {
	case RoleSuperAdmin, RoleEngineer, RoleSupportLead:
		return true
	}
	return false
}

// AdminUser is the identity extracted from a verified admin token.
type AdminUser struct {
	ID    string
	Email string
	Role  Role
}
