// Package httpserver exposes the coordinator's operational surface: the
// session dump and debug controls, health probes, prometheus metrics and
// the websocket event stream.
package httpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/hintd/internal/domain"
	"github.com/pscheid92/hintd/internal/platform/config"
)

type sessionService interface {
	StartSession(flags domain.HintFlags, display domain.DisplayID, reason string) (domain.SessionInfo, error)
	CloseSession(id uuid.UUID) error
	Dump() []domain.SessionInfo
	DumpTo(w io.Writer)
}

type eventHub interface {
	Register(conn *websocket.Conn) error
	Unregister(conn *websocket.Conn)
	ClientCount() int
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	sessions sessionService
	hub      eventHub
	upgrader websocket.Upgrader

	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, sessions sessionService, hub eventHub, checkOrigin func(r *http.Request) bool, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		sessions:     sessions,
		hub:          hub,
		upgrader:     websocket.Upgrader{CheckOrigin: checkOrigin},
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting debug server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
