package domain

// Login roles. Staff roles (admin, employee) manage profiles; a client may
// only read the profile its account is linked to.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleClient   = "client"
)

// IsStaffRole reports whether role may manage every profile.
func IsStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}
