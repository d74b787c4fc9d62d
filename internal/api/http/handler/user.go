// Package handler contains the HTTP handlers for the user endpoints.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kpisystems/credvault/internal/logger"
	"github.com/kpisystems/credvault/internal/model"
	"github.com/kpisystems/credvault/internal/service"
)

// Users handles the /user endpoints.
type Users struct {
	credentials *service.Credentials
	logger      *logger.Logger
}

// NewUsers creates a new Users handler.
func NewUsers(credentials *service.Credentials, logger *logger.Logger) *Users {
	return &Users{
		credentials: credentials,
		logger:      logger,
	}
}

// Create handles POST /user/create. A taken username answers 400, success
// answers 200 with an empty body.
func (h *Users) Create(c echo.Context) error {
	var input model.UserInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}

	created, err := h.credentials.CreateUser(c.Request().Context(), input)
	if err != nil {
		return handleError(err)
	}
	if !created {
		return c.NoContent(http.StatusBadRequest)
	}

	return c.NoContent(http.StatusOK)
}

// Delete handles DELETE /user/delete?username=u. An unknown username
// answers 400, a removed key answers 200.
func (h *Users) Delete(c echo.Context) error {
	username := c.QueryParam("username")

	deleted, err := h.credentials.DeleteUser(c.Request().Context(), username)
	if err != nil {
		return handleError(err)
	}
	if !deleted {
		return c.NoContent(http.StatusBadRequest)
	}

	return c.NoContent(http.StatusOK)
}

// Retrieve handles GET /user/retrieve?username=u and answers the user with
// the password decrypted.
func (h *Users) Retrieve(c echo.Context) error {
	username := c.QueryParam("username")

	user, err := h.credentials.GetUser(c.Request().Context(), username)
	if err != nil {
		return handleError(err)
	}

	return c.JSON(http.StatusOK, user)
}
