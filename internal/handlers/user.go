package handlers

import (
	"net/http"
	"strings"

	"github.com/anonto42/memories/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler serves profiles and the people picker
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterUserRoutes registers profile and user lookup routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.GET("/users", h.ListUsers)
	g.GET("/users/resolve", h.ResolveUsers)
}

// GetProfile returns the caller's stored profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetProfile(c.Request().Context(), session.UserID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, user)
}

// ListUsers returns every user that can be tagged in a post
func (h *UserHandler) ListUsers(c echo.Context) error {
	if _, err := requireSession(c); err != nil {
		return err
	}
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, users)
}

// ResolveUsers maps ?id= values (repeated or comma separated) to profiles
func (h *UserHandler) ResolveUsers(c echo.Context) error {
	if _, err := requireSession(c); err != nil {
		return err
	}
	var ids []string
	for _, v := range c.QueryParams()["id"] {
		ids = append(ids, strings.Split(v, ",")...)
	}
	return success(c, http.StatusOK, h.users.ResolvePeople(c.Request().Context(), ids))
}
