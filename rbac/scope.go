package rbac

import (
	"github.com/google/uuid"
)

// Scope carries everything an authorization decision needs about the acting
// user. It is resolved fresh for every request (role can change at any time)
// and passed explicitly into every scoped query and guard evaluation; nothing
// in this package holds ambient actor state.
type Scope struct {
	UserID         uuid.UUID
	Email          string
	Role           Role
	Department     string
	OrganizationID uuid.UUID

	// ActingRole, when set by the admin-gated impersonation flow, substitutes
	// the effective role for this request without touching the persisted role.
	ActingRole Role
}

// EffectiveRole returns the role decisions are computed against: the acting
// (impersonated) role when one is set, otherwise the real role.
func (s Scope) EffectiveRole() Role {
	if s.ActingRole != "" {
		return s.ActingRole
	}
	return s.Role
}

// Permissions returns the capability set for the effective role.
func (s Scope) Permissions() PermissionSet {
	return PermissionsFor(s.EffectiveRole())
}

// ActAs returns a copy of the scope with the effective role substituted.
// Only an actor whose real role is admin may impersonate; any other caller
// gets the scope back unchanged.
func (s Scope) ActAs(role Role) Scope {
	if !s.Role.IsAdmin() || !role.IsValid() {
		return s
	}
	s.ActingRole = role
	return s
}

// Visibility predicates. These answer "which rows does this actor see" and are
// the contract the storage layer filters against. Decisions are a function of
// role (and department for manager-tier data), never of raw user-ID equality
// for roles above employee/viewer.

// ViewAllProjects reports whether project listings are enterprise-wide.
func (s Scope) ViewAllProjects() bool {
	return s.Permissions().CanViewAllProjects
}

// ViewAllTimeEntries reports whether time-entry listings cover all users.
func (s Scope) ViewAllTimeEntries() bool {
	return s.Permissions().CanViewAllProjects
}

// ViewAllEmployees reports whether employee listings cover the whole company.
func (s Scope) ViewAllEmployees() bool {
	p := s.Permissions()
	return p.CanManageEmployees || p.CanViewDepartmentData
}

// ViewDepartmentData reports whether department-level aggregates are visible.
func (s Scope) ViewDepartmentData() bool {
	return s.Permissions().CanViewDepartmentData
}

// Mutability predicates. The storage layer re-checks these on every mutation;
// hidden UI controls are a courtesy, not the trust boundary.

// CanCreateProject reports whether the actor may create projects.
func (s Scope) CanCreateProject() bool {
	return s.Permissions().CanCreateProjects
}

// CanEditProject reports whether the actor may edit a project. Deliberately
// role-global: a project_manager edits any project, including ones created by
// other users. Ownership is not consulted for roles above the employee tier.
func (s Scope) CanEditProject() bool {
	return s.Permissions().CanEditProjects
}

// CanDeleteProject reports whether the actor may delete projects.
func (s Scope) CanDeleteProject() bool {
	return s.Permissions().CanDeleteProjects
}

// CanManageEmployees reports whether the actor may create/update employees.
func (s Scope) CanManageEmployees() bool {
	return s.Permissions().CanManageEmployees
}

// CanManageSystem reports whether the actor may perform admin-only system
// operations (role changes, organization management, impersonation).
func (s Scope) CanManageSystem() bool {
	return s.Permissions().CanManageSystem
}

// CanViewTimeEntry reports whether a single entry owned by ownerID is visible.
func (s Scope) CanViewTimeEntry(ownerID uuid.UUID) bool {
	if s.ViewAllTimeEntries() {
		return true
	}
	return ownerID == s.UserID
}

// CanMutateTimeEntry reports whether the actor may create, update, or delete a
// time entry owned by ownerID. Admins are unrestricted. Everyone else mutates
// only their own entries, and only while the parent project is inside its
// active window and the parent task is not archived.
func (s Scope) CanMutateTimeEntry(ownerID uuid.UUID, projectActive, taskArchived bool) bool {
	if s.EffectiveRole().IsAdmin() {
		return true
	}
	if s.EffectiveRole().IsViewer() {
		return false
	}
	if ownerID != s.UserID {
		return false
	}
	return projectActive && !taskArchived
}
