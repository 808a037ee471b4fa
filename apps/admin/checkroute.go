package main

import (
	"context"
	"fmt"

	"github.com/trezcool/masomo-portal/apps"
	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/access"
	profilesvc "github.com/trezcool/masomo-portal/services/profile"
)

// cliSession is a no-network session for dry runs.
type cliSession struct {
	id access.Identity
}

func (s cliSession) Identity() access.Identity   { return s.id }
func (s cliSession) Credential() (string, error) { return "", nil }

// checkRoute prints the gate's verdict for a path as seen by a caller with
// the given role ("" = unauthenticated). The cache is pre-seeded so no
// profile fetch happens.
func (cli *commandLine) checkRoute(path, role string) error {
	if role != "" && !access.ParseRole(role).Known() && role != string(access.RoleUnassigned) {
		return apps.NewArgumentError(fmt.Sprintf("unknown role %q", role))
	}

	cache := access.NewRoleCache(cli.conf.Gate.RoleTTL, cli.conf.Gate.CacheHighWater)
	gate := access.NewGate(cache, profilesvc.NewDummyService(), core.NewStdLogger(logger))

	var sess access.Session
	if role != "" {
		id := access.Identity("cli")
		cache.Set(id, access.ParseRole(role))
		sess = cliSession{id: id}
	}

	decision := gate.Authorize(context.Background(), path, sess)
	fmt.Fprintf(cli.out, "route class: %v\n", access.ClassifyRoute(path))
	if decision.Forward() {
		fmt.Fprintln(cli.out, "decision: forward")
	} else {
		fmt.Fprintf(cli.out, "decision: redirect -> %s\n", decision.Redirect)
	}
	return nil
}
