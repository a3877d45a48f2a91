package models

// Role enumerates the viewer roles recognised by the dashboard.
type Role string

const (
	RoleAdmin     Role = "admin"
	RolePrincipal Role = "principal"
	RoleTeacher   Role = "teacher"
	RoleCounselor Role = "counselor"
	RoleStudent   Role = "student"
)

// Valid reports whether the role belongs to the closed enum.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePrincipal, RoleTeacher, RoleCounselor, RoleStudent:
		return true
	default:
		return false
	}
}

// AutoApprove reports whether records created by this role are approved
// immediately instead of waiting for an approver.
func (r Role) AutoApprove() bool {
	return r == RoleAdmin || r == RolePrincipal
}

// Identity is the authenticated viewer, supplied by the auth layer on every
// store call. The store never caches it.
type Identity struct {
	Role        Role   `json:"role"`
	DisplayName string `json:"displayName"`
}
