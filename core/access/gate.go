package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/trezcool/masomo-portal/core"
)

var (
	// errors
	ErrUnauthenticated    = errors.New("user not authenticated")
	ErrNoCredential       = errors.New("no API credential for session")
	ErrProfileUnavailable = errors.New("profile service unavailable")
	ErrNoRole             = errors.New("profile has no role assigned")
)

type (
	// Session is the authenticated session context established by the auth
	// layer wrapping the gate. A nil Session means no caller identity.
	Session interface {
		Identity() Identity
		// Credential exchanges the session for a bearer credential accepted
		// by the profile service.
		Credential() (string, error)
	}

	// ProfileClient fetches the caller's role from the profile service.
	// Implementations return ErrProfileUnavailable or ErrNoRole (possibly
	// wrapped) on failure.
	ProfileClient interface {
		FetchRole(ctx context.Context, credential string) (Role, error)
	}

	// Gate authorizes portal requests: it classifies the route, resolves the
	// caller's role (cache first, profile service on a miss) and decides
	// whether the request may proceed.
	Gate struct {
		cache   *RoleCache
		profile ProfileClient
		logger  core.Logger
	}
)

func NewGate(cache *RoleCache, profile ProfileClient, logger core.Logger) *Gate {
	return &Gate{
		cache:   cache,
		profile: profile,
		logger:  logger,
	}
}

// Decision is the gate's verdict on a request: forward it unchanged, or
// redirect the caller. There is no third outcome.
type Decision struct {
	Redirect string // redirect target; empty means forward
}

func (d Decision) Forward() bool { return d.Redirect == "" }

var forward = Decision{}

// Authorize runs the gate once for an inbound request.
// Any failure while resolving the caller's role resolves to a redirect
// toward registration, never to an error response (fail open toward
// registration: an unprovisioned caller and a hiccuping profile service look
// the same from here).
func (g *Gate) Authorize(ctx context.Context, path string, sess Session) Decision {
	class := ClassifyRoute(path)
	if class == RoutePublic || class == RouteRegistration {
		return forward
	}

	if sess == nil || sess.Identity() == "" {
		return Decision{Redirect: SignInURL(path)}
	}

	id := sess.Identity()
	role, ok := g.cache.Get(id)
	if !ok {
		var err error
		if role, err = g.resolveRole(ctx, sess); err != nil {
			g.logger.Debug(fmt.Sprintf("resolving role for %q: %v", id, err))
			return Decision{Redirect: RegistrationPath}
		}
		g.cache.Set(id, role)
	}
	return decide(class, role)
}

// resolveRole exchanges the session for a credential and asks the profile
// service for the caller's role. A single attempt, no retries: a failure is
// treated as "caller not fully provisioned yet".
func (g *Gate) resolveRole(ctx context.Context, sess Session) (Role, error) {
	cred, err := sess.Credential()
	if err != nil {
		return RoleUnassigned, fmt.Errorf("%w: %v", ErrNoCredential, err)
	}
	if cred == "" {
		return RoleUnassigned, ErrNoCredential
	}
	return g.profile.FetchRole(ctx, cred)
}

// decide maps (route class, role) to the gate's verdict. Role-scoped
// dashboards only forward their own role; anyone else is silently bounced to
// their own home (or to registration when no role is assigned yet).
func decide(class RouteClass, role Role) Decision {
	switch class {
	case RouteDashboardRoot:
		return Decision{Redirect: role.Dashboard()}
	case RouteAdminDashboard:
		if role == RoleAdmin {
			return forward
		}
	case RouteTeacherDashboard:
		if role == RoleTeacher {
			return forward
		}
	case RouteStudentDashboard:
		if role == RoleStudent {
			return forward
		}
	default: // RouteOther and anything unhandled
		return forward
	}
	return Decision{Redirect: role.Dashboard()}
}
