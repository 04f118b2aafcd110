package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/hintd/internal/app"
	"github.com/pscheid92/hintd/internal/domain"
)

var flagNames = map[string]domain.HintFlags{
	"early_wakeup": domain.HintEarlyWakeup,
	"frame_rate":   domain.HintFrameRate,
	"adpf_boost":   domain.HintADPFBoost,
}

type startSessionRequest struct {
	Flags   []string         `json:"flags"`
	Display domain.DisplayID `json:"display"`
	Reason  string           `json:"reason"`
}

func (r *startSessionRequest) hintFlags() (domain.HintFlags, error) {
	var flags domain.HintFlags
	for _, name := range r.Flags {
		flag, ok := flagNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown hint flag %q", name)
		}
		flags |= flag
	}
	return flags, nil
}

func (s *Server) handleListSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"sessions": s.sessions.Dump(),
	})
}

func (s *Server) handleDumpSessions(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	s.sessions.DumpTo(c.Response())
	return nil
}

func (s *Server) handleStartSession(c echo.Context) error {
	var req startSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Reason == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "reason is required"})
	}

	flags, err := req.hintFlags()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	info, err := s.sessions.StartSession(flags, req.Display, req.Reason)
	switch {
	case errors.Is(err, domain.ErrNoDisplayRootResolver), errors.Is(err, domain.ErrNoLoadHintChannel):
		// Capability not wired on this deployment.
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, info)
}

func (s *Server) handleCloseSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid session id"})
	}

	if err := s.sessions.CloseSession(id); err != nil {
		if errors.Is(err, app.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}
