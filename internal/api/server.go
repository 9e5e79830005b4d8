// Package api exposes the HTTP surface: plugin management, search dispatch,
// scheduler introspection and each plugin's own routes.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/bridgearr/bridgearr/internal/config"
	"github.com/bridgearr/bridgearr/internal/plugin"
	"github.com/bridgearr/bridgearr/internal/scheduler"
)

// Server handles HTTP requests for the bridgearr API.
type Server struct {
	echo    *echo.Echo
	cfg     *config.Config
	manager *plugin.Manager
	sched   *scheduler.Scheduler
	logger  zerolog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, manager *plugin.Manager, sched *scheduler.Scheduler, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		cfg:     cfg,
		manager: manager,
		sched:   sched,
		logger:  logger.With().Str("component", "api").Logger(),
	}

	e.Use(middleware.Recover())
	e.Use(s.requestLogger())

	s.registerRoutes()
	return s
}

// Start begins serving HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	addr := s.cfg.Server.Address()
	s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")

	err := s.echo.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			event := s.logger.Debug()
			if err != nil || c.Response().Status >= http.StatusInternalServerError {
				event = s.logger.Error().Err(err)
			}
			event.
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request")

			return err
		}
	}
}
