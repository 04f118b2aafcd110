package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pscheid92/hintd/internal/app"
	"github.com/pscheid92/hintd/internal/domain"
	"github.com/pscheid92/hintd/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSessions struct {
	infos    []domain.SessionInfo
	started  []startSessionRequest
	startErr error
	closed   []uuid.UUID
	closeErr error
}

func (m *mockSessions) StartSession(flags domain.HintFlags, display domain.DisplayID, reason string) (domain.SessionInfo, error) {
	m.started = append(m.started, startSessionRequest{Display: display, Reason: reason})
	if m.startErr != nil {
		return domain.SessionInfo{}, m.startErr
	}
	return domain.SessionInfo{ID: uuid.New(), Reason: reason, Flags: flags, Display: display}, nil
}

func (m *mockSessions) CloseSession(id uuid.UUID) error {
	m.closed = append(m.closed, id)
	return m.closeErr
}

func (m *mockSessions) Dump() []domain.SessionInfo { return m.infos }

func (m *mockSessions) DumpTo(w io.Writer) {
	fmt.Fprintf(w, "Active sessions (%d):\n", len(m.infos))
}

type mockHub struct {
	registerErr error
}

func (m *mockHub) Register(*websocket.Conn) error { return m.registerErr }
func (m *mockHub) Unregister(*websocket.Conn)     {}
func (m *mockHub) ClientCount() int               { return 0 }

func newTestServer(sessions sessionService, checks []HealthCheck) *Server {
	cfg := &config.Config{
		Port:                "0",
		EventsRatePerSecond: 100,
		EventsBurst:         100,
	}
	return NewServer(cfg, sessions, &mockHub{}, func(*http.Request) bool { return true }, checks)
}

func doRequest(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echoHeaderContentType, "application/json")
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func TestHandleListSessions(t *testing.T) {
	sessions := &mockSessions{infos: []domain.SessionInfo{
		{ID: uuid.New(), Reason: "video", Flags: domain.HintFrameRate, Display: 2},
	}}
	srv := newTestServer(sessions, nil)

	rec := doRequest(srv, http.MethodGet, "/debug/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sessions []domain.SessionInfo `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, "video", resp.Sessions[0].Reason)
	assert.Equal(t, domain.HintFrameRate, resp.Sessions[0].Flags)
}

func TestHandleDumpSessions(t *testing.T) {
	srv := newTestServer(&mockSessions{}, nil)

	rec := doRequest(srv, http.MethodGet, "/debug/sessions/dump", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Active sessions (0)")
}

func TestHandleStartSession(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		startErr error
		wantCode int
	}{
		{"valid", `{"flags":["early_wakeup","adpf_boost"],"display":-1,"reason":"launch"}`, nil, http.StatusCreated},
		{"unknown flag", `{"flags":["turbo"],"reason":"x"}`, nil, http.StatusBadRequest},
		{"missing reason", `{"flags":["early_wakeup"]}`, nil, http.StatusBadRequest},
		{"malformed body", `{"flags":`, nil, http.StatusBadRequest},
		{"no resolver wired", `{"flags":["frame_rate"],"display":0,"reason":"x"}`, domain.ErrNoDisplayRootResolver, http.StatusConflict},
		{"no channel wired", `{"flags":["adpf_boost"],"reason":"x"}`, domain.ErrNoLoadHintChannel, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &mockSessions{startErr: tt.startErr}
			srv := newTestServer(sessions, nil)

			rec := doRequest(srv, http.MethodPost, "/debug/sessions", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandleStartSession_ReturnsInfo(t *testing.T) {
	sessions := &mockSessions{}
	srv := newTestServer(sessions, nil)

	rec := doRequest(srv, http.MethodPost, "/debug/sessions",
		`{"flags":["early_wakeup"],"display":-1,"reason":"launch"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var info domain.SessionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "launch", info.Reason)
	assert.Equal(t, domain.HintEarlyWakeup, info.Flags)
	require.Len(t, sessions.started, 1)
	assert.Equal(t, domain.GlobalDisplay, sessions.started[0].Display)
}

func TestHandleCloseSession(t *testing.T) {
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		sessions := &mockSessions{}
		srv := newTestServer(sessions, nil)

		rec := doRequest(srv, http.MethodDelete, "/debug/sessions/"+id.String(), "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.Len(t, sessions.closed, 1)
		assert.Equal(t, id, sessions.closed[0])
	})

	t.Run("not found", func(t *testing.T) {
		sessions := &mockSessions{closeErr: app.ErrSessionNotFound}
		srv := newTestServer(sessions, nil)

		rec := doRequest(srv, http.MethodDelete, "/debug/sessions/"+id.String(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		srv := newTestServer(&mockSessions{}, nil)

		rec := doRequest(srv, http.MethodDelete, "/debug/sessions/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleLiveness(t *testing.T) {
	srv := newTestServer(&mockSessions{}, nil)

	rec := doRequest(srv, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleReadiness(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := newTestServer(&mockSessions{}, []HealthCheck{
			{Name: "compositor", Check: func(ctx context.Context) error { return nil }},
		})

		rec := doRequest(srv, http.MethodGet, "/health/ready", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unhealthy", func(t *testing.T) {
		srv := newTestServer(&mockSessions{}, []HealthCheck{
			{Name: "perfchannel", Check: func(ctx context.Context) error { return assert.AnError }},
		})

		rec := doRequest(srv, http.MethodGet, "/health/ready", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "perfchannel")
	})
}

func TestHandleVersion(t *testing.T) {
	srv := newTestServer(&mockSessions{}, nil)

	rec := doRequest(srv, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_version")
}

func TestHandleMetrics(t *testing.T) {
	srv := newTestServer(&mockSessions{}, nil)

	rec := doRequest(srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
