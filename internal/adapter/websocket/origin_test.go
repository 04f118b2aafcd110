package websocket

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func requestWithOrigin(origin string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/events", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name          string
		allowedOrigin string
		isDevelopment bool
		origin        string
		want          bool
	}{
		{"empty origin always allowed", "https://ops.example.com", false, "", true},
		{"allowed origin", "https://ops.example.com", false, "https://ops.example.com", true},
		{"other origin rejected", "https://ops.example.com", false, "https://evil.example.com", false},
		{"no allowed origin configured", "", false, "https://ops.example.com", false},
		{"localhost rejected in production", "", false, "http://localhost:3000", false},
		{"localhost allowed in development", "", true, "http://localhost:3000", true},
		{"loopback IP allowed in development", "", true, "http://127.0.0.1:3000", true},
		{"garbage origin rejected in development", "", true, "://not-a-url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewCheckOrigin(tt.allowedOrigin, tt.isDevelopment)
			assert.Equal(t, tt.want, check(requestWithOrigin(tt.origin)))
		})
	}
}
