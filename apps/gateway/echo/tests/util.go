package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/trezcool/masomo-portal/apps/gateway/echo"
	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/access"
	profilesvc "github.com/trezcool/masomo-portal/services/profile"
	testutil "github.com/trezcool/masomo-portal/tests"
)

type gateway struct {
	srv     Server
	conf    *core.Config
	profile *profilesvc.DummyService
}

// setup wires a gateway around a stub upstream portal and a dummy profile
// service, mirroring prod wiring in apps/gateway/main.go.
func setup(t *testing.T) *gateway {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("portal:" + r.URL.Path))
	}))
	t.Cleanup(upstream.Close)

	conf := testutil.NewConfig()
	conf.Upstream.PortalURL = upstream.URL

	profile := profilesvc.NewDummyService()
	cache := access.NewRoleCache(conf.Gate.RoleTTL, conf.Gate.CacheHighWater)
	gate := access.NewGate(cache, profile, testutil.NewLogger())

	srv := NewServer(ServerDeps{
		Conf:   conf,
		Logger: testutil.NewLogger(),
		Gate:   gate,
	})
	return &gateway{srv: srv, conf: conf, profile: profile}
}

func (g *gateway) request(t *testing.T, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: g.conf.Server.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	g.srv.ServeHTTP(rec, req)
	return rec
}

func (g *gateway) requestBearer(t *testing.T, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	g.srv.ServeHTTP(rec, req)
	return rec
}

func (g *gateway) token(t *testing.T, identity string) string {
	claims := NewSessionClaims(g.conf, identity, identity, identity+"@masomo.cd")
	token, err := GenerateSessionToken(g.conf, claims)
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}
