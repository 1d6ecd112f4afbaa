package repository

import (
	"context"

	"github.com/madaghaxx/Noctua/internal/models"

	"gorm.io/gorm"
)

// MediaRepository tracks attachment records owned by posts.
type MediaRepository interface {
	Create(ctx context.Context, m *models.Media) error
	ListByPost(ctx context.Context, postID uint) ([]models.Media, error)
	DeleteByPost(ctx context.Context, postID uint) (int64, error)
}

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new MediaRepository
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, m *models.Media) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if IsUniqueViolation(err) {
			return models.NewConflictError("Media name already exists")
		}
		return internal(err)
	}
	return nil
}

func (r *mediaRepository) ListByPost(ctx context.Context, postID uint) ([]models.Media, error) {
	var list []models.Media
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id asc").Find(&list).Error
	return list, internal(err)
}

func (r *mediaRepository) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Media{})
	return res.RowsAffected, internal(res.Error)
}
