package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/memories/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const sessionKey = "session"

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware creates an Echo middleware to verify Firebase ID tokens
func FirebaseAuthMiddleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}

			token, err := verifier.VerifyIDToken(c.Request().Context(), tokenParts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			c.Set(sessionKey, SessionFromToken(token))
			return next(c)
		}
	}
}

// SessionFromToken builds the session identity from verified token claims
func SessionFromToken(token *auth.Token) models.Session {
	s := models.Session{UserID: token.UID}
	if v, ok := token.Claims["email"].(string); ok {
		s.Email = v
	}
	if v, ok := token.Claims["name"].(string); ok {
		s.DisplayName = v
	}
	if v, ok := token.Claims["picture"].(string); ok {
		s.Avatar = v
	}
	return s
}

// SessionFromContext returns the session set by FirebaseAuthMiddleware
func SessionFromContext(c echo.Context) (models.Session, bool) {
	s, ok := c.Get(sessionKey).(models.Session)
	return s, ok && s.UserID != ""
}

// WithSession stores s on c as FirebaseAuthMiddleware does
func WithSession(c echo.Context, s models.Session) {
	c.Set(sessionKey, s)
}
