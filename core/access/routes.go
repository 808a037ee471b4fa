package access

import (
	"net/url"
	"strings"
)

// Well-known portal paths.
const (
	SignInPath       = "/sign-in"
	SignUpPath       = "/sign-up"
	RegistrationPath = "/complete-registration"
	DashboardPath    = "/dashboard"
)

// RouteClass is the gate's view of a request path.
type RouteClass int

const (
	// RoutePublic needs no authentication at all.
	RoutePublic RouteClass = iota
	// RouteRegistration is the registration-completion flow; never blocked
	// for an authenticated caller, whatever their role.
	RouteRegistration
	// RouteDashboardRoot is the bare dashboard path; callers get bounced
	// to their role's home.
	RouteDashboardRoot
	RouteAdminDashboard
	RouteTeacherDashboard
	RouteStudentDashboard
	// RouteOther is any other protected path; allowed for any resolved caller.
	RouteOther
)

func (c RouteClass) String() string {
	switch c {
	case RoutePublic:
		return "public"
	case RouteRegistration:
		return "registration"
	case RouteDashboardRoot:
		return "dashboard-root"
	case RouteAdminDashboard:
		return "admin-dashboard"
	case RouteTeacherDashboard:
		return "teacher-dashboard"
	case RouteStudentDashboard:
		return "student-dashboard"
	}
	return "other"
}

// ClassifyRoute categorizes a request path. It is a pure function of the
// path; public and registration checks run before any dashboard check so a
// caller mid-registration is never locked out of completing it.
func ClassifyRoute(path string) RouteClass {
	switch {
	case path == "/" || hasPathPrefix(path, SignInPath) || hasPathPrefix(path, SignUpPath):
		return RoutePublic
	case hasPathPrefix(path, RegistrationPath):
		return RouteRegistration
	case path == DashboardPath:
		return RouteDashboardRoot
	case hasPathPrefix(path, DashboardPath+"/admin"):
		return RouteAdminDashboard
	case hasPathPrefix(path, DashboardPath+"/teacher"):
		return RouteTeacherDashboard
	case hasPathPrefix(path, DashboardPath+"/student"):
		return RouteStudentDashboard
	}
	return RouteOther
}

// hasPathPrefix matches whole path segments: "/sign-in" and "/sign-in/sso"
// match the "/sign-in" prefix but "/sign-inbox" does not.
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/'
}

// SignInURL builds the sign-in redirect target, carrying the originally
// requested path so the caller lands back where they started.
func SignInURL(origPath string) string {
	q := make(url.Values)
	q.Set("redirect_url", origPath)
	return SignInPath + "?" + q.Encode()
}
