package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/access"
)

type (
	ServerDeps struct {
		Conf   *core.Config
		Logger core.Logger
		Gate   *access.Gate
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps         ServerDeps
		app          *echo.Echo
		errChan      chan error
		shutdownChan chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:         deps,
		app:          echo.New(),
		errChan:      make(chan error, 1),
		shutdownChan: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownChan, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(conf, s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/healthz", health)

	// everything else flows gate -> upstream portal
	portal := s.app.Group("")
	portal.Use(gateMiddleware(conf, s.deps.Gate))
	portal.Use(middleware.Proxy(middleware.NewRoundRobinBalancer(s.upstreamTargets())))
}

func (s *server) upstreamTargets() []*middleware.ProxyTarget {
	u, err := url.Parse(s.deps.Conf.Upstream.PortalURL)
	if err != nil {
		s.deps.Logger.Fatal(fmt.Sprintf("parsing upstream portal URL: %v", err), err)
	}
	return []*middleware.ProxyTarget{{URL: u}}
}

func (s *server) Start() {
	addr := s.deps.Conf.Server.Address()
	s.deps.Logger.Info(fmt.Sprintf("%s listening on %s", s.deps.Conf.AppName, addr))
	s.errChan <- s.app.Start(addr)
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errChan
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdownChan
}

func (s *server) signalShutdown() {
	select {
	case s.shutdownChan <- syscall.SIGTERM:
	default: // a shutdown is already underway
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
