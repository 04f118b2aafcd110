package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/hintd/internal/platform/logging"
)

// requestIDMiddleware stamps every request context with a fresh request
// ID so all log lines of one request correlate.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := logging.WithRequestID(req.Context(), logging.NewRequestID())
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
