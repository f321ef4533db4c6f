// Package panel serves the operator's control panel: the rendered roster, the simulation form and
// the crash control.
package panel

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/determined-ai/memberpanel/internal/view"
	"github.com/determined-ai/memberpanel/pkg/logger"
	"github.com/determined-ai/memberpanel/pkg/model"
	"github.com/determined-ai/memberpanel/pkg/simconfig"
)

// Commands runs operator actions.
type Commands interface {
	SubmitInit(ctx context.Context, cfg simconfig.Config) error
	SubmitCrash(ctx context.Context, id model.ProcessorID) error
}

// Viewer exposes the rendered page.
type Viewer interface {
	State() view.State
	Subscribe() (<-chan view.State, func())
}

// Server is the panel's HTTP server.
type Server struct {
	// System dependencies.
	log      *log.Entry
	commands Commands
	viewer   Viewer

	// Configuration details.
	addr     string
	defaults simconfig.Config

	// Internal state.
	echo *echo.Echo
}

// New returns a panel server listening on addr once Serve is called. defaults prefill the
// simulation form.
func New(addr string, defaults simconfig.Config, commands Commands, viewer Viewer) *Server {
	e := echo.New()
	e.Logger = logger.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(otelecho.Middleware("memberpanel"))

	s := &Server{
		log:      log.WithField("component", "panel"),
		commands: commands,
		viewer:   viewer,
		addr:     addr,
		defaults: defaults,
		echo:     e,
	}

	e.GET("/", s.getIndex)
	e.GET("/ws", s.getSocket)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.GET("/view", s.getView)
	api.POST("/start", s.postStart)
	api.POST("/crash", s.postCrash)

	return s
}

// Handler returns the server's routes, for serving from tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Serve listens until the server is shut down.
func (s *Server) Serve() error {
	s.log.Infof("starting panel on [%s]", s.addr)
	if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
