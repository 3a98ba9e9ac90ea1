package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/memories/backend/internal/models"
	"github.com/anonto42/memories/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PATCH("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost accepts a multipart form with one or more media files.
// Each file's kind comes from the matching "kinds" value, or from its
// content type when kinds is omitted.
func (h *PostHandler) CreatePost(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}

	media, err := localMediaFromForm(form)
	if err != nil {
		return toHTTPError(err)
	}
	postForm, err := postFormFromValues(form.Value)
	if err != nil {
		return toHTTPError(err)
	}

	post, err := h.posts.CreatePost(c.Request().Context(), session, media, postForm)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusCreated, post)
}

// GetPost retrieves a post by ID with its tagged people resolved
func (h *PostHandler) GetPost(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	post, err := h.posts.GetPost(c.Request().Context(), session, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, post)
}

// UpdatePost applies a partial update. Empty location or tagged_people
// remove the field.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	var req models.PostUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.posts.UpdatePost(c.Request().Context(), session, c.Param("id"), req)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, post)
}

// DeletePost deletes a post and its media
func (h *PostHandler) DeletePost(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	if err := h.posts.DeletePost(c.Request().Context(), session, c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func localMediaFromForm(form *multipart.Form) ([]services.LocalMedia, error) {
	files := form.File["media"]
	if len(files) == 0 {
		return nil, models.NewValidationError("media", "at least one media item is required")
	}
	kinds := splitValues(form.Value["kinds"])
	if len(kinds) > 0 && len(kinds) != len(files) {
		return nil, models.NewValidationError("kinds", fmt.Sprintf("expected %d kinds, got %d", len(files), len(kinds)))
	}

	media := make([]services.LocalMedia, len(files))
	for i, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		kind := kindFromContentType(contentType)
		if len(kinds) > 0 {
			kind = models.MediaKind(strings.ToLower(kinds[i]))
		}
		fh := fh
		media[i] = services.LocalMedia{
			Kind:         kind,
			OriginalName: fh.Filename,
			ContentType:  contentType,
			Open:         func() (io.ReadCloser, error) { return fh.Open() },
		}
	}
	return media, nil
}

func kindFromContentType(contentType string) models.MediaKind {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.MediaKindImage
	case strings.HasPrefix(contentType, "video/"):
		return models.MediaKindVideo
	}
	return models.MediaKind(contentType)
}

func postFormFromValues(values map[string][]string) (models.PostForm, error) {
	form := models.PostForm{
		Description:  first(values["description"]),
		Location:     first(values["location"]),
		Tags:         splitValues(values["tags"]),
		TaggedPeople: splitValues(values["people"]),
	}
	if raw := strings.TrimSpace(first(values["datetime"])); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.PostForm{}, models.NewValidationError("datetime", "must be an RFC3339 timestamp")
		}
		form.OccurredAt = t
	}
	return form, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// splitValues flattens repeated and comma separated form values
func splitValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
