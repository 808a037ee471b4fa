package access

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/trezcool/masomo-portal/core"
)

type fakeSession struct {
	id      Identity
	cred    string
	credErr error
}

func (s fakeSession) Identity() Identity          { return s.id }
func (s fakeSession) Credential() (string, error) { return s.cred, s.credErr }

type fakeProfile struct {
	role    Role
	err     error
	fetches int
}

func (p *fakeProfile) FetchRole(context.Context, string) (Role, error) {
	p.fetches++
	if p.err != nil {
		return RoleUnassigned, p.err
	}
	return p.role, nil
}

func newTestGate(profile ProfileClient) (*Gate, *RoleCache) {
	cache := NewRoleCache(30*time.Second, 100)
	logger := core.NewStdLogger(log.New(io.Discard, "", 0))
	return NewGate(cache, profile, logger), cache
}

func TestGate_decisionTable(t *testing.T) {
	adminHome, teacherHome, studentHome := "/dashboard/admin", "/dashboard/teacher", "/dashboard/student"
	fwd := "" // forward

	tests := []struct {
		path string
		role Role
		want string // redirect target; empty means forward
	}{
		// public & registration: everyone through
		{path: "/", role: RoleAdmin, want: fwd},
		{path: "/", role: RoleUnassigned, want: fwd},
		{path: "/complete-registration", role: RoleAdmin, want: fwd},
		{path: "/complete-registration", role: RoleUnassigned, want: fwd},
		// dashboard root: bounce everyone to their home
		{path: "/dashboard", role: RoleAdmin, want: adminHome},
		{path: "/dashboard", role: RoleTeacher, want: teacherHome},
		{path: "/dashboard", role: RoleStudent, want: studentHome},
		{path: "/dashboard", role: RoleUnassigned, want: RegistrationPath},
		// admin scope
		{path: "/dashboard/admin", role: RoleAdmin, want: fwd},
		{path: "/dashboard/admin", role: RoleTeacher, want: teacherHome},
		{path: "/dashboard/admin", role: RoleStudent, want: studentHome},
		{path: "/dashboard/admin", role: RoleUnassigned, want: RegistrationPath},
		// teacher scope
		{path: "/dashboard/teacher", role: RoleAdmin, want: adminHome},
		{path: "/dashboard/teacher", role: RoleTeacher, want: fwd},
		{path: "/dashboard/teacher", role: RoleStudent, want: studentHome},
		{path: "/dashboard/teacher", role: RoleUnassigned, want: RegistrationPath},
		// student scope
		{path: "/dashboard/student", role: RoleAdmin, want: adminHome},
		{path: "/dashboard/student", role: RoleTeacher, want: teacherHome},
		{path: "/dashboard/student", role: RoleStudent, want: fwd},
		{path: "/dashboard/student", role: RoleUnassigned, want: RegistrationPath},
		// anything else: default allow
		{path: "/announcements", role: RoleStudent, want: fwd},
		{path: "/announcements", role: RoleUnassigned, want: fwd},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+" "+tt.path, func(t *testing.T) {
			gate, _ := newTestGate(&fakeProfile{role: tt.role})
			sess := fakeSession{id: "usr-1", cred: "cred-1"}
			got := gate.Authorize(context.Background(), tt.path, sess)
			if got.Redirect != tt.want {
				t.Errorf("Authorize(%q, %v) redirect = %q, want %q", tt.path, tt.role, got.Redirect, tt.want)
			}
		})
	}
}

func TestGate_publicSkipsAuthEntirely(t *testing.T) {
	profile := &fakeProfile{role: RoleAdmin}
	gate, _ := newTestGate(profile)

	// no session at all
	if d := gate.Authorize(context.Background(), "/", nil); !d.Forward() {
		t.Errorf("public route should forward, got redirect to %q", d.Redirect)
	}
	if d := gate.Authorize(context.Background(), "/sign-in", nil); !d.Forward() {
		t.Errorf("sign-in should forward, got redirect to %q", d.Redirect)
	}
	if profile.fetches != 0 {
		t.Errorf("public routes must never hit the profile service, got %d fetches", profile.fetches)
	}
}

func TestGate_unauthenticatedRedirectsToSignIn(t *testing.T) {
	gate, _ := newTestGate(&fakeProfile{role: RoleAdmin})

	d := gate.Authorize(context.Background(), "/dashboard/admin", nil)
	if want := "/sign-in?redirect_url=%2Fdashboard%2Fadmin"; d.Redirect != want {
		t.Errorf("redirect = %q, want %q", d.Redirect, want)
	}

	// an empty identity counts as unauthenticated too
	d = gate.Authorize(context.Background(), "/dashboard/admin", fakeSession{})
	if want := "/sign-in?redirect_url=%2Fdashboard%2Fadmin"; d.Redirect != want {
		t.Errorf("redirect = %q, want %q", d.Redirect, want)
	}
}

func TestGate_cacheAvoidsRefetch(t *testing.T) {
	profile := &fakeProfile{role: RoleTeacher}
	gate, _ := newTestGate(profile)
	sess := fakeSession{id: "usr-1", cred: "cred-1"}

	// a never-seen identity triggers exactly one fetch
	first := gate.Authorize(context.Background(), "/dashboard/teacher", sess)
	if !first.Forward() {
		t.Fatalf("want forward, got redirect to %q", first.Redirect)
	}
	if profile.fetches != 1 {
		t.Fatalf("fetches = %d, want 1", profile.fetches)
	}

	// within the TTL the cached role is used; same decision, no fetch
	second := gate.Authorize(context.Background(), "/dashboard/teacher", sess)
	if second != first {
		t.Errorf("decision changed between identical calls: %v != %v", second, first)
	}
	if profile.fetches != 1 {
		t.Errorf("fetches = %d, want 1 (cache hit)", profile.fetches)
	}
}

func TestGate_expiredEntryRefetches(t *testing.T) {
	now := time.Now()
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	profile := &fakeProfile{role: RoleStudent}
	gate, _ := newTestGate(profile)
	sess := fakeSession{id: "usr-1", cred: "cred-1"}

	before := gate.Authorize(context.Background(), "/dashboard/student/grades", sess)

	NowFunc = func() time.Time { return now.Add(31 * time.Second) }
	after := gate.Authorize(context.Background(), "/dashboard/student/grades", sess)

	if profile.fetches != 2 {
		t.Errorf("fetches = %d, want 2 (expired entry refetches)", profile.fetches)
	}
	if before != after {
		t.Errorf("re-fetching the same role changed the decision: %v != %v", before, after)
	}
}

func TestGate_failuresFallOpenTowardRegistration(t *testing.T) {
	tests := []struct {
		name    string
		sess    Session
		profile *fakeProfile
	}{
		{
			name:    "credential exchange fails",
			sess:    fakeSession{id: "usr-1", credErr: errors.New("token endpoint down")},
			profile: &fakeProfile{role: RoleAdmin},
		},
		{
			name:    "credential empty",
			sess:    fakeSession{id: "usr-1"},
			profile: &fakeProfile{role: RoleAdmin},
		},
		{
			name:    "profile service unavailable",
			sess:    fakeSession{id: "usr-1", cred: "cred-1"},
			profile: &fakeProfile{err: ErrProfileUnavailable},
		},
		{
			name:    "no role assigned",
			sess:    fakeSession{id: "usr-1", cred: "cred-1"},
			profile: &fakeProfile{err: ErrNoRole},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, cache := newTestGate(tt.profile)
			d := gate.Authorize(context.Background(), "/dashboard/admin", tt.sess)
			if d.Redirect != RegistrationPath {
				t.Errorf("redirect = %q, want %q", d.Redirect, RegistrationPath)
			}
			// failed resolutions are never cached
			if cache.Len() != 0 {
				t.Errorf("cache.Len() = %d, want 0", cache.Len())
			}
		})
	}
}
