package handlers

import (
	"net/http"

	"github.com/anonto42/memories/backend/internal/models"
	"github.com/anonto42/memories/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// TagHandler serves the caller's tag vocabulary
type TagHandler struct {
	tags *services.TagService
}

func NewTagHandler(tags *services.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

func (h *TagHandler) RegisterTagRoutes(g *echo.Group) {
	g.GET("/tags", h.ListTags)
	g.POST("/tags", h.AddTag)
}

func (h *TagHandler) ListTags(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	tags, err := h.tags.Vocabulary(c.Request().Context(), session.UserID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, tags)
}

func (h *TagHandler) AddTag(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	var req models.CreateTagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tags, err := h.tags.AddTag(c.Request().Context(), session.UserID, req.Tag)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusCreated, tags)
}
