package postgres

import (
	"fmt"

	"github.com/timetrackerpro/backend/rbac"
)

// Visibility filters shared by list queries and dashboard aggregates. Both
// paths build their WHERE clause from the same function, so a dashboard total
// is always the sum over exactly the rows the corresponding list returns.

// timeEntryVisibility returns the WHERE fragment limiting time-entry rows to
// the actor's visible set. column names the user-id column (with table alias
// when joined). args grows by the appended placeholders; the fragment uses
// 1-based positions continuing from the existing args.
func timeEntryVisibility(scope rbac.Scope, column string, args []interface{}) (string, []interface{}) {
	if scope.ViewAllTimeEntries() {
		return "TRUE", args
	}
	args = append(args, scope.UserID)
	return fmt.Sprintf("%s = $%d", column, len(args)), args
}

// projectVisibility returns the WHERE fragment limiting project rows to the
// actor's visible set. Roles without the view-all capability see only the
// entry-selection list: projects whose date window covers the current day.
// alias prefixes the project columns (empty for an unaliased table).
func projectVisibility(scope rbac.Scope, alias string) string {
	if scope.ViewAllProjects() {
		return "TRUE"
	}
	p := alias
	if p != "" {
		p += "."
	}
	return fmt.Sprintf(
		"(%[1]sstart_date IS NULL OR %[1]sstart_date <= CURRENT_DATE) AND (%[1]send_date IS NULL OR %[1]send_date >= CURRENT_DATE)",
		p,
	)
}

// employeeVisibility returns the WHERE fragment limiting employee rows to the
// actor's visible set: the whole company for management roles, the actor's own
// linked profile otherwise.
func employeeVisibility(scope rbac.Scope, column string, args []interface{}) (string, []interface{}) {
	if scope.ViewAllEmployees() {
		return "TRUE", args
	}
	args = append(args, scope.UserID)
	return fmt.Sprintf("%s = $%d", column, len(args)), args
}
