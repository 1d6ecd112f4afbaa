package repository

import (
	"context"

	"github.com/madaghaxx/Noctua/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the content store operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID loads a post with its counts; viewerID 0 means anonymous.
	GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error)
	LockByID(ctx context.Context, id uint) (*models.Post, error)
	// GetForShare loads the post under a shared lock, blocking while a cascade holds it.
	GetForShare(ctx context.Context, id uint) (*models.Post, error)
	GetOwner(ctx context.Context, postID uint) (uint, error)
	Update(ctx context.Context, post *models.Post) error
	SetHidden(ctx context.Context, id uint, hidden bool) error
	List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error)
	// Feed returns visible posts owned by the users subscriberID follows, newest first.
	Feed(ctx context.Context, subscriberID uint, limit, offset int) ([]*models.Post, error)
	// LockIDsByOwner locks every post owned by userID and returns their ids in ascending order.
	LockIDsByOwner(ctx context.Context, userID uint) ([]uint, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return internal(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
}

func (r *postRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		First(&post, id).Error
	if err != nil {
		return nil, mapError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) LockByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&post, id).Error
	if err != nil {
		return nil, mapError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetForShare(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		First(&post, id).Error
	if err != nil {
		return nil, mapError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetOwner(ctx context.Context, postID uint) (uint, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&post, postID).Error; err != nil {
		return 0, mapError(err, "Post", postID)
	}
	return post.UserID, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{"title": post.Title, "content": post.Content}).Error
	return internal(err)
}

func (r *postRepository) SetHidden(ctx context.Context, id uint, hidden bool) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("hidden", hidden)
	if res.Error != nil {
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("posts.hidden = ?", false).
		Order("posts.created_at desc, posts.id desc").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, internal(err)
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	db := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("posts.user_id = ?", userID)
	// Owners still see their own hidden posts.
	if viewerID != userID {
		db = db.Where("posts.hidden = ?", false)
	}
	err := db.Order("posts.created_at desc, posts.id desc").Limit(limit).Offset(offset).Find(&posts).Error
	return posts, internal(err)
}

func (r *postRepository) Feed(ctx context.Context, subscriberID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	targets := r.db.Model(&models.Subscription{}).Select("target_id").Where("subscriber_id = ?", subscriberID)
	err := r.applyPostDetails(r.db.WithContext(ctx), subscriberID).
		Preload("User").
		Where("posts.user_id IN (?)", targets).
		Where("posts.hidden = ?", false).
		Order("posts.created_at desc, posts.id desc").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, internal(err)
}

func (r *postRepository) LockIDsByOwner(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("id asc").
		Pluck("id", &ids).Error
	return ids, internal(err)
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, internal(err)
}

// applyPostDetails selects the computed like/comment counts and the viewer's liked flag.
func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count"
	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", viewerID)
	}
	return db.Select(selectQuery + ", false as liked")
}

// Delete removes the post row only; dependent rows are handled by the cascade.
func (r *postRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	return res.RowsAffected, internal(res.Error)
}
