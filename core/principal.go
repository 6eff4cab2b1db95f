package core

import "strings"

// Roles
const (
	// Admin
	RoleAdmin          = "admin:"
	RoleAdminOwner     = "admin:owner"
	RoleAdminPrincipal = "admin:principal"

	// Teacher
	RoleTeacher = "teacher:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner, RoleAdminPrincipal}
	TeacherRoles = []string{RoleTeacher}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner:     30,
		RoleAdminPrincipal: 29,
		RoleAdmin:          21,

		// Teachers: 20 - 11
		RoleTeacher: 11,
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 4)
	all = append(all, AdminRoles...)
	all = append(all, TeacherRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

// RolesStartWith reports whether any of roles starts with prefix.
func RolesStartWith(roles []string, prefix string) bool {
	for _, role := range roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

// Principal is the authenticated caller of a core operation.
type Principal struct {
	UserID   string
	SchoolID string
	Name     string
	Email    string
	Roles    []string
}

func (p Principal) IsAdmin() bool {
	return RolesStartWith(p.Roles, RoleAdmin)
}

func (p Principal) IsTeacher() bool {
	return RolesStartWith(p.Roles, RoleTeacher)
}

// RequireAdmin returns ErrAccessDenied unless p is a school admin.
func (p Principal) RequireAdmin() error {
	if p.SchoolID == "" || !p.IsAdmin() {
		return ErrAccessDenied
	}
	return nil
}

// RequireTeacher returns ErrAccessDenied unless p is a school teacher.
func (p Principal) RequireTeacher() error {
	if p.SchoolID == "" || !p.IsTeacher() {
		return ErrAccessDenied
	}
	return nil
}

// RequireStaff returns ErrAccessDenied unless p is an admin or a teacher of a school.
func (p Principal) RequireStaff() error {
	if p.SchoolID == "" || !(p.IsAdmin() || p.IsTeacher()) {
		return ErrAccessDenied
	}
	return nil
}
