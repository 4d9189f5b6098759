package rbac

// Role represents the access tier of a user within the company.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleManager        Role = "manager"
	RoleProjectManager Role = "project_manager"
	RoleEmployee       Role = "employee"
	RoleViewer         Role = "viewer"
)

// KnownRoles lists every role tag the system accepts, in privilege order.
var KnownRoles = []Role{RoleAdmin, RoleManager, RoleProjectManager, RoleEmployee, RoleViewer}

// IsValid reports whether r is one of the five known role tags.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleProjectManager, RoleEmployee, RoleViewer:
		return true
	}
	return false
}

// ParseRole maps a stored role string to a Role. Unknown values fall back to
// the least-privileged working role (employee) rather than erroring out, so a
// corrupted or legacy role value can never grant elevated access. Callers that
// care about the anomaly should check the second return value and log it.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	if r.IsValid() {
		return r, true
	}
	return RoleEmployee, false
}

// IsAdmin reports whether r is the admin role.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// IsManager reports whether r is the manager role.
func (r Role) IsManager() bool { return r == RoleManager }

// IsProjectManager reports whether r is the project_manager role.
func (r Role) IsProjectManager() bool { return r == RoleProjectManager }

// IsEmployee reports whether r is the employee role.
func (r Role) IsEmployee() bool { return r == RoleEmployee }

// IsViewer reports whether r is the viewer role.
func (r Role) IsViewer() bool { return r == RoleViewer }

// HasAnyRole reports whether r is a member of the given set.
func (r Role) HasAnyRole(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
