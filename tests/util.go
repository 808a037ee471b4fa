package testutil

import (
	"io"
	"log"
	"time"

	"github.com/trezcool/masomo-portal/core"
)

// NewConfig returns a ready-to-use test configuration; callers override
// fields as needed.
func NewConfig() *core.Config {
	conf := new(core.Config)
	conf.Env = "TEST"
	conf.Debug = false
	conf.TestMode = true
	conf.AppName = "Masomo Portal"
	conf.Build = "test"
	conf.SecretKey = "secret"
	conf.Server.Host = "localhost"
	conf.Server.Port = 8080
	conf.Server.SessionCookie = "masomo_session"
	conf.Server.SessionExpirationDelta = 10 * time.Minute
	conf.Server.CredentialExpirationDelta = time.Minute
	conf.Server.ShutdownTimeout = time.Second
	conf.Upstream.PortalURL = "http://localhost:3000"
	conf.Profile.BaseURL = "http://localhost:8000"
	conf.Profile.Timeout = 2 * time.Second
	conf.Gate.RoleTTL = 30 * time.Second
	conf.Gate.CacheHighWater = 100
	return conf
}

// NewLogger returns a core.Logger that keeps quiet.
func NewLogger() core.Logger {
	return core.NewStdLogger(log.New(io.Discard, "", 0))
}
