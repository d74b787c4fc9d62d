// Package middleware contains HTTP middleware shared by all routes.
package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kpisystems/credvault/internal/logger"
)

// Logging is a middleware that logs HTTP requests and results. Each
// request gets a request id, taken from the X-Request-Id header when the
// caller supplied one and generated otherwise.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, path, duration and status for each request.
func (l *Logging) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		requestID := c.Request().Header.Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, requestID)

		log := l.logger.With("request_id", requestID)
		log.Info("HTTP request started",
			"method", c.Request().Method,
			"path", c.Request().URL.Path)

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		duration := time.Since(start)

		log.Info("HTTP request completed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration_ms", duration.Milliseconds())

		if err != nil {
			log.Error("HTTP request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"error", err.Error())
		}

		return nil
	}
}
