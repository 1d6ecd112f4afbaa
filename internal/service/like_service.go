package service

import (
	"context"
	"fmt"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/notifications"
	"github.com/madaghaxx/Noctua/internal/observability"
	"github.com/madaghaxx/Noctua/internal/repository"
)

// LikeToggleResult is returned by ToggleLike.
type LikeToggleResult struct {
	Outcome   repository.ToggleOutcome `json:"outcome"`
	Liked     bool                     `json:"liked"`
	LikeCount int64                    `json:"like_count"`
}

type LikeService struct {
	store      repository.Store
	dispatcher *notifications.Dispatcher
}

func NewLikeService(store repository.Store, dispatcher *notifications.Dispatcher) *LikeService {
	return &LikeService{store: store, dispatcher: dispatcher}
}

// ToggleLike removes actorID's like on postID if it exists, otherwise adds it.
// The post owner is notified on like and the notification is retracted on unlike.
// A hidden post is NOT_FOUND for everyone but its owner.
func (s *LikeService) ToggleLike(ctx context.Context, actorID, postID uint) (*LikeToggleResult, error) {
	var (
		result LikeToggleResult
		out    notifications.Outcome
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		post, err := tx.Posts().GetForShare(ctx, postID)
		if err != nil {
			return err
		}
		if post.Hidden && post.UserID != actorID {
			return models.NewNotFoundError("Post", postID)
		}
		actor, err := tx.Users().GetForShare(ctx, actorID)
		if err != nil {
			return err
		}

		outcome, err := tx.Likes().Toggle(ctx, actorID, postID)
		if err != nil {
			return toggleError(ctx, "like", actorID, postID, err)
		}

		var events notifications.Batch
		if outcome == repository.ToggleCreated {
			events.Emit(post.UserID, actorID, models.NotificationLike,
				fmt.Sprintf("%s liked your post: %s", actor.Username, post.Title), post.ID)
		} else {
			events.Retract(post.UserID, actorID, models.NotificationLike, post.ID)
		}
		if out, err = s.dispatcher.Apply(ctx, tx.Notifications(), events); err != nil {
			return err
		}

		count, err := tx.Likes().CountByPost(ctx, postID)
		if err != nil {
			return err
		}
		result = LikeToggleResult{Outcome: outcome, Liked: outcome == repository.ToggleCreated, LikeCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RelationshipToggles.WithLabelValues("like", string(result.Outcome)).Inc()
	s.dispatcher.Publish(ctx, out)
	return &result, nil
}

func (s *LikeService) LikeCount(ctx context.Context, postID uint) (int64, error) {
	if _, err := s.store.Posts().GetOwner(ctx, postID); err != nil {
		return 0, err
	}
	return s.store.Likes().CountByPost(ctx, postID)
}

func (s *LikeService) HasLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.store.Likes().Exists(ctx, userID, postID)
}
