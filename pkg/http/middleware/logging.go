package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "TazeAI/pkg/logger"
)

// RequestLogging logs every request at debug level, and requests rejected
// with a 4xx envelope or returning an error at warn.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			status := StatusOf(c)
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", status),
				applogger.Duration("latency_ms", time.Since(start)),
			}
			switch {
			case err != nil:
				l.Warn("http request error", append(fields, applogger.Error(err))...)
			case status >= 400 && status < 500:
				l.Warn("http request rejected", fields...)
			default:
				l.Debug("http request", fields...)
			}
			return err
		}
	}
}
