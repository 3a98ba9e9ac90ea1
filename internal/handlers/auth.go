package handlers

import (
	"net/http"

	"github.com/anonto42/memories/backend/internal/middleware"
	"github.com/anonto42/memories/backend/internal/models"
	"github.com/anonto42/memories/backend/internal/ratelimit"
	"github.com/anonto42/memories/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AuthHandler exchanges Firebase ID tokens for a server-side profile
type AuthHandler struct {
	verifier middleware.TokenVerifier
	limiter  ratelimit.Limiter
	users    *services.UserService
	logger   zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(verifier middleware.TokenVerifier, limiter ratelimit.Limiter, users *services.UserService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{verifier: verifier, limiter: limiter, users: users, logger: logger}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/session", h.CreateSession)
}

// CreateSession verifies the ID token and returns the caller's profile,
// creating it on first sign-in. Every attempt counts toward the limit.
func (h *AuthHandler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	allowed, err := h.limiter.Allow(ctx, c.RealIP())
	if err != nil {
		h.logger.Error().Err(err).Str("ip", c.RealIP()).Msg("rate limiter unavailable")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Sign-in is temporarily unavailable")
	}
	if !allowed {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many sign-in attempts, try again later")
	}

	var req models.SessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.verifier.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	user, err := h.users.EnsureProfile(ctx, middleware.SessionFromToken(token))
	if err != nil {
		return toHTTPError(err)
	}
	h.logger.Info().Str("user_id", user.ID).Msg("session established")
	return success(c, http.StatusOK, user)
}
