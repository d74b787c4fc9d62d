// Package router assembles the echo application from handlers and
// middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kpisystems/credvault/internal/api/http/handler"
	"github.com/kpisystems/credvault/internal/api/http/middleware"
	"github.com/kpisystems/credvault/internal/logger"
	"github.com/kpisystems/credvault/internal/service"
)

// Router registers the user routes and shared middleware.
type Router struct {
	credentials *service.Credentials
	logger      *logger.Logger
}

// New creates a new Router instance.
func New(credentials *service.Credentials, logger *logger.Logger) *Router {
	return &Router{
		credentials: credentials,
		logger:      logger,
	}
}

// Register builds the echo instance with all routes and middleware
// configured.
func (r *Router) Register() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	logging := middleware.NewLogging(r.logger)
	e.Use(logging.Handle)

	users := handler.NewUsers(r.credentials, r.logger)

	g := e.Group("/user")
	g.POST("/create", users.Create)
	g.DELETE("/delete", users.Delete)
	g.GET("/retrieve", users.Retrieve)

	return e
}
