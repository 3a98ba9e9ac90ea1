package services

import (
	"context"
	"fmt"

	"github.com/anonto42/memories/backend/internal/models"
	"github.com/anonto42/memories/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// UserService manages profiles and resolves tagged people for display
type UserService struct {
	users  repositories.UserRepository
	logger zerolog.Logger
}

func NewUserService(users repositories.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// EnsureProfile creates the session user's profile on first sign-in and
// returns the stored one.
func (s *UserService) EnsureProfile(ctx context.Context, session models.Session) (*models.User, error) {
	if session.UserID == "" {
		return nil, models.NewValidationError("user", "an authenticated user is required")
	}
	user, err := s.users.EnsureUser(ctx, &models.User{
		ID:          session.UserID,
		DisplayName: session.DisplayName,
		Email:       session.Email,
		Avatar:      session.Avatar,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure profile %s: %w", session.UserID, err)
	}
	return user, nil
}

// GetProfile returns the stored profile of userID
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// ListUsers returns every taggable user
func (s *UserService) ListUsers(ctx context.Context) ([]models.UserCompact, error) {
	users, err := s.users.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out, nil
}

// ResolvePeople maps user ids to display profiles in input order. Ids with
// no profile are dropped; a lookup failure yields an empty list.
func (s *UserService) ResolvePeople(ctx context.Context, ids []string) []models.UserCompact {
	ids = uniqueNonEmpty(ids)
	out := make([]models.UserCompact, 0, len(ids))
	if len(ids) == 0 {
		return out
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Strs("user_ids", ids).Msg("failed to resolve tagged people")
		return out
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u.ToCompact())
		}
	}
	return out
}
