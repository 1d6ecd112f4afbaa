package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/notifications"
	"github.com/madaghaxx/Noctua/internal/repository"
)

const maxCommentLen = 10000

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

type CommentService struct {
	store      repository.Store
	dispatcher *notifications.Dispatcher
}

func NewCommentService(store repository.Store, dispatcher *notifications.Dispatcher) *CommentService {
	return &CommentService{store: store, dispatcher: dispatcher}
}

func validateComment(content string) error {
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return nil
}

// CreateComment adds a comment and notifies the post owner in the same transaction.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if err := validateComment(content); err != nil {
		return nil, err
	}

	var (
		comment *models.Comment
		out     notifications.Outcome
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		post, err := tx.Posts().GetForShare(ctx, in.PostID)
		if err != nil {
			return err
		}
		if post.Hidden && post.UserID != in.UserID {
			return models.NewNotFoundError("Post", in.PostID)
		}
		author, err := tx.Users().GetForShare(ctx, in.UserID)
		if err != nil {
			return err
		}

		comment = &models.Comment{Content: content, UserID: in.UserID, PostID: in.PostID}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}

		var events notifications.Batch
		events.Emit(post.UserID, author.ID, models.NotificationComment,
			fmt.Sprintf("%s commented on your post: %s", author.Username, post.Title), post.ID)
		out, err = s.dispatcher.Apply(ctx, tx.Notifications(), events)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Publish(ctx, out)
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint, page Page) ([]*models.Comment, error) {
	if _, err := s.store.Posts().GetOwner(ctx, postID); err != nil {
		return nil, err
	}
	page = page.normalize()
	return s.store.Comments().ListByPost(ctx, postID, page.Limit, page.Offset)
}

func (s *CommentService) CountComments(ctx context.Context, postID uint) (int64, error) {
	return s.store.Comments().CountByPost(ctx, postID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.store.Comments().GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	content := strings.TrimSpace(in.Content)
	if err := validateComment(content); err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.store.Comments().Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.store.Comments().GetByID(ctx, comment.ID)
}

// DeleteComment removes a comment. The author or an admin may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.store.Comments().GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}
	if comment.UserID != in.UserID {
		requester, err := s.store.Users().GetByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !requester.IsAdmin() {
			return models.NewForbiddenError("You can only delete your own comments")
		}
	}
	return s.store.Comments().Delete(ctx, comment.ID)
}
