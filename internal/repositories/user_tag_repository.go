package repositories

import (
	"context"

	"github.com/anonto42/memories/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserTagRepository defines the interface for custom tag operations
type UserTagRepository interface {
	GetTagsByUserID(ctx context.Context, userID string) ([]string, error)
	AddTag(ctx context.Context, userID, tag string) error
}

// PostgresUserTagRepository implements UserTagRepository for PostgreSQL
type PostgresUserTagRepository struct {
	db *gorm.DB
}

func NewPostgresUserTagRepository(db *gorm.DB) *PostgresUserTagRepository {
	return &PostgresUserTagRepository{db: db}
}

func (r *PostgresUserTagRepository) GetTagsByUserID(ctx context.Context, userID string) ([]string, error) {
	tags := make([]string, 0)
	err := r.db.WithContext(ctx).Model(&models.UserTag{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("tag", &tags).Error
	return tags, err
}

func (r *PostgresUserTagRepository) AddTag(ctx context.Context, userID, tag string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserTag{UserID: userID, Tag: tag}).Error
}
