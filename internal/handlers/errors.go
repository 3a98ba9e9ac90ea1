package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/memories/backend/internal/middleware"
	"github.com/anonto42/memories/backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// toHTTPError maps service errors onto HTTP status codes. Anything not
// recognised is a backend failure.
func toHTTPError(err error) error {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to modify this post")
	case errors.Is(err, models.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	// The request logger records the internal error; clients only see the message.
	return echo.NewHTTPError(http.StatusBadGateway, "Backend service unavailable").SetInternal(err)
}

func requireSession(c echo.Context) (models.Session, error) {
	s, ok := middleware.SessionFromContext(c)
	if !ok {
		return models.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return s, nil
}

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}
