package repository

import (
	"context"

	"github.com/madaghaxx/Noctua/internal/models"

	"gorm.io/gorm"
)

// LikeRepository defines the relationship store operations for likes.
type LikeRepository interface {
	// Toggle must be called on a transaction-bound repository.
	Toggle(ctx context.Context, userID, postID uint) (ToggleOutcome, error)
	Exists(ctx context.Context, userID, postID uint) (bool, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	DeleteByPost(ctx context.Context, postID uint) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Toggle(ctx context.Context, userID, postID uint) (ToggleOutcome, error) {
	key := pairKey{actorColumn: "user_id", targetColumn: "post_id", actorID: userID, targetID: postID}
	return togglePair(ctx, r.db, key, func() *models.Like {
		return &models.Like{UserID: userID, PostID: postID}
	})
}

func (r *likeRepository) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, internal(err)
}

func (r *likeRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, internal(err)
}

func (r *likeRepository) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{})
	return res.RowsAffected, internal(res.Error)
}

func (r *likeRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Like{})
	return res.RowsAffected, internal(res.Error)
}
