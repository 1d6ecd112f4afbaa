package service

import (
	"context"
	"strings"

	"github.com/madaghaxx/Noctua/internal/cache"
	"github.com/madaghaxx/Noctua/internal/cascade"
	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/repository"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000
)

type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   string
	Content string
}

type PostService struct {
	store   repository.Store
	deleter *cascade.Deleter
	cache   *cache.Cache
}

func NewPostService(store repository.Store, deleter *cascade.Deleter, c *cache.Cache) *PostService {
	return &PostService{store: store, deleter: deleter, cache: c}
}

func validatePost(title, content string) error {
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title, content := strings.TrimSpace(in.Title), strings.TrimSpace(in.Content)
	if err := validatePost(title, content); err != nil {
		return nil, err
	}
	post := &models.Post{Title: title, Content: content, UserID: in.UserID}
	// The author row stays share-locked until the post is inserted.
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetForShare(ctx, in.UserID); err != nil {
			return err
		}
		return tx.Posts().Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.AnalyticsKey)
	return s.store.Posts().GetByID(ctx, post.ID, in.UserID)
}

// GetPost returns a post with its counts. Hidden posts are only visible to their owner.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if post.Hidden && post.UserID != viewerID {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, page Page, viewerID uint) ([]*models.Post, error) {
	page = page.normalize()
	return s.store.Posts().List(ctx, page.Limit, page.Offset, viewerID)
}

func (s *PostService) ListUserPosts(ctx context.Context, userID uint, page Page, viewerID uint) ([]*models.Post, error) {
	page = page.normalize()
	return s.store.Posts().ListByUser(ctx, userID, page.Limit, page.Offset, viewerID)
}

// Feed returns posts from the users userID subscribes to, newest first.
func (s *PostService) Feed(ctx context.Context, userID uint, page Page) ([]*models.Post, error) {
	page = page.normalize()
	return s.store.Posts().Feed(ctx, userID, page.Limit, page.Offset)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	owner, err := s.store.Posts().GetOwner(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if owner != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}
	title, content := strings.TrimSpace(in.Title), strings.TrimSpace(in.Content)
	if err := validatePost(title, content); err != nil {
		return nil, err
	}
	if err := s.store.Posts().Update(ctx, &models.Post{ID: in.PostID, Title: title, Content: content}); err != nil {
		return nil, err
	}
	return s.store.Posts().GetByID(ctx, in.PostID, in.UserID)
}

// DeletePost removes a post and its dependents. Only the owner or an admin may do it.
func (s *PostService) DeletePost(ctx context.Context, postID, requesterID uint) (*DeletionSummary, error) {
	requester, err := s.store.Users().GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	res, err := s.deleter.DeletePost(ctx, postID, func(p *models.Post) error {
		if p.UserID != requesterID && !requester.IsAdmin() {
			return models.NewForbiddenError("You can only delete your own posts")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.AnalyticsKey)
	return summarize(res), nil
}
