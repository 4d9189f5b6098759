package rbac

// Capability names one kind of gated operation.
type Capability string

const (
	CapCreateProjects     Capability = "create_projects"
	CapEditProjects       Capability = "edit_projects"
	CapDeleteProjects     Capability = "delete_projects"
	CapManageEmployees    Capability = "manage_employees"
	CapViewDepartmentData Capability = "view_department_data"
	CapViewAllProjects    Capability = "view_all_projects"
	CapManageSystem       Capability = "manage_system"
	CapCreateTasks        Capability = "create_tasks"
	CapEditTasks          Capability = "edit_tasks"
	CapViewReports        Capability = "view_reports"
	CapExportData         Capability = "export_data"
)

// PermissionSet is the fixed capability record for one role.
type PermissionSet struct {
	CanCreateProjects     bool `json:"canCreateProjects"`
	CanEditProjects       bool `json:"canEditProjects"`
	CanDeleteProjects     bool `json:"canDeleteProjects"`
	CanManageEmployees    bool `json:"canManageEmployees"`
	CanViewDepartmentData bool `json:"canViewDepartmentData"`
	CanViewAllProjects    bool `json:"canViewAllProjects"`
	CanManageSystem       bool `json:"canManageSystem"`
	CanCreateTasks        bool `json:"canCreateTasks"`
	CanEditTasks          bool `json:"canEditTasks"`
	CanViewReports        bool `json:"canViewReports"`
	CanExportData         bool `json:"canExportData"`
}

// PermissionsFor returns the permission set for a role. The mapping is total:
// every known role has a fixed row, and anything else resolves to the employee
// row. This is the single source of truth for the role/capability matrix; the
// guard middleware and the storage-layer scope predicates both derive from it.
func PermissionsFor(role Role) PermissionSet {
	switch role {
	case RoleAdmin:
		return PermissionSet{
			CanCreateProjects:     true,
			CanEditProjects:       true,
			CanDeleteProjects:     true,
			CanManageEmployees:    true,
			CanViewDepartmentData: true,
			CanViewAllProjects:    true,
			CanManageSystem:       true,
			CanCreateTasks:        true,
			CanEditTasks:          true,
			CanViewReports:        true,
			CanExportData:         true,
		}
	case RoleManager:
		return PermissionSet{
			CanManageEmployees:    true,
			CanViewDepartmentData: true,
			CanViewAllProjects:    true,
			CanViewReports:        true,
		}
	case RoleProjectManager:
		return PermissionSet{
			CanCreateProjects:  true,
			CanEditProjects:    true,
			CanViewAllProjects: true,
			CanCreateTasks:     true,
			CanEditTasks:       true,
			CanViewReports:     true,
		}
	case RoleViewer:
		return PermissionSet{}
	default:
		// employee row; also the fail-closed fallback for unrecognized roles
		return PermissionSet{}
	}
}

// Has reports whether the set grants a single capability.
func (p PermissionSet) Has(cap Capability) bool {
	switch cap {
	case CapCreateProjects:
		return p.CanCreateProjects
	case CapEditProjects:
		return p.CanEditProjects
	case CapDeleteProjects:
		return p.CanDeleteProjects
	case CapManageEmployees:
		return p.CanManageEmployees
	case CapViewDepartmentData:
		return p.CanViewDepartmentData
	case CapViewAllProjects:
		return p.CanViewAllProjects
	case CapManageSystem:
		return p.CanManageSystem
	case CapCreateTasks:
		return p.CanCreateTasks
	case CapEditTasks:
		return p.CanEditTasks
	case CapViewReports:
		return p.CanViewReports
	case CapExportData:
		return p.CanExportData
	}
	// unknown capability never grants access
	return false
}

// HasAll reports whether the set grants every listed capability.
func (p PermissionSet) HasAll(caps ...Capability) bool {
	for _, c := range caps {
		if !p.Has(c) {
			return false
		}
	}
	return true
}

// HasAny reports whether the set grants at least one listed capability.
func (p PermissionSet) HasAny(caps ...Capability) bool {
	for _, c := range caps {
		if p.Has(c) {
			return true
		}
	}
	return false
}
