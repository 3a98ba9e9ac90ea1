package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/memories/backend/internal/models"
	"github.com/anonto42/memories/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	posts *services.PostService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(posts *services.PostService) *FeedHandler {
	return &FeedHandler{posts: posts}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns the caller's timeline filtered by q, date, location and
// tag. date is YYYY-MM-DD, compared in tz (an IANA zone, default UTC).
func (h *FeedHandler) GetFeed(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	date, err := parseDay(c.QueryParam("date"), c.QueryParam("tz"))
	if err != nil {
		return toHTTPError(err)
	}
	params := services.ParseSearchParams(
		c.QueryParam("q"),
		date,
		c.QueryParam("location"),
		splitValues(c.QueryParams()["tag"]),
	)

	posts, err := h.posts.Feed(c.Request().Context(), session, params)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    posts,
		"filters": params,
	})
}

func parseDay(raw, tz string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, models.NewValidationError("tz", "unknown time zone")
		}
		loc = l
	}
	day, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return nil, models.NewValidationError("date", "must be formatted YYYY-MM-DD")
	}
	return &day, nil
}
