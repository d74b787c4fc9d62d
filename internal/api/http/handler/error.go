package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kpisystems/credvault/internal/model"
)

// handleError translates service errors to HTTP responses. Every failure
// maps to 400 with the error message as body, matching the API this
// service replaced.
func handleError(err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return echo.NewHTTPError(http.StatusBadRequest, model.ErrNotFound.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
