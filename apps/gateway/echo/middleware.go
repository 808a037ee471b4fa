package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/access"
)

// Paths the gate never intercepts: static assets and gateway-internal
// endpoints. Configuration, not logic.
var gateSkipPrefixes = []string{
	"/healthz",
	"/favicon.ico",
	"/static",
	"/assets",
}

func gateSkipper(ctx echo.Context) bool {
	path := ctx.Request().URL.Path
	for _, prefix := range gateSkipPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// gateMiddleware runs the authorization gate once per intercepted request:
// forward untouched, or answer with the gate's redirect. It never errors.
func gateMiddleware(conf *core.Config, gate *access.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if gateSkipper(ctx) {
				return next(ctx)
			}
			sess := getContextSession(ctx, conf)
			decision := gate.Authorize(ctx.Request().Context(), ctx.Request().URL.Path, sess)
			if decision.Forward() {
				return next(ctx)
			}
			return ctx.Redirect(http.StatusFound, decision.Redirect)
		}
	}
}
