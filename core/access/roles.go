package access

// Identity is the opaque caller reference established by the auth layer.
// It is valid for one session and is never persisted by this package.
type Identity string

// Role is the caller's portal role. The profile service is the only
// authority on roles; this package only ever caches them.
type Role string

const (
	RoleAdmin   Role = "admin"   // -> ADMIN PORTAL
	RoleTeacher Role = "teacher" // -> TEACHER PORTAL
	RoleStudent Role = "student" // -> STUDENT PORTAL

	// RoleUnassigned marks a caller whose registration is not complete yet.
	RoleUnassigned Role = "unassigned"
)

var dashboards = map[Role]string{
	RoleAdmin:   DashboardPath + "/admin",
	RoleTeacher: DashboardPath + "/teacher",
	RoleStudent: DashboardPath + "/student",
}

// ParseRole maps a raw role value from the profile service to a Role.
// Anything outside the known set is treated as unassigned.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return Role(s)
	}
	return RoleUnassigned
}

// Known reports whether the role maps to one of the three portals.
func (r Role) Known() bool {
	_, ok := dashboards[r]
	return ok
}

// Dashboard returns the home dashboard path for a known role;
// the registration-completion path otherwise.
func (r Role) Dashboard() string {
	if home, ok := dashboards[r]; ok {
		return home
	}
	return RegistrationPath
}

func (r Role) String() string { return string(r) }
