package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/panemexpress/rail-booking/internal/logger"
)

// AccessLog writes one structured line per request.  Server errors log at
// error level, client errors at warn.
func AccessLog() echo.MiddlewareFunc {
	log := logger.Module("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo write the error response so the status is final.
				c.Error(err)
			}
			req := c.Request()
			status := c.Response().Status
			entry := log.WithFields(logrus.Fields{
				"request_id": RequestIDFrom(c),
				"method":     req.Method,
				"path":       req.URL.Path,
				"route":      c.Path(),
				"status":     status,
				"latency_ms": time.Since(start).Milliseconds(),
				"ip":         c.RealIP(),
			})
			if uid := CurrentUserID(c); uid != 0 {
				entry = entry.WithField("user_id", uid)
			}
			switch {
			case status >= 500:
				entry.WithError(err).Error("request")
			case status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
			return nil
		}
	}
}
