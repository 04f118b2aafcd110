package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
)

// handleEvents upgrades the connection and hands it to the hub. The hub
// owns the connection afterwards; the read loop here only exists to
// notice client disconnects.
func (s *Server) handleEvents(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.WarnContext(c.Request().Context(), "Event stream upgrade failed", "error", err)
		return nil
	}

	if err := s.hub.Register(conn); err != nil {
		slog.WarnContext(c.Request().Context(), "Event stream registration rejected", "error", err)
		return nil
	}

	go func() {
		defer s.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}
