package service

import (
	"context"
	"fmt"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/notifications"
	"github.com/madaghaxx/Noctua/internal/observability"
	"github.com/madaghaxx/Noctua/internal/repository"
)

// SubscriptionToggleResult is returned by ToggleSubscription.
type SubscriptionToggleResult struct {
	Outcome         repository.ToggleOutcome `json:"outcome"`
	Subscribed      bool                     `json:"subscribed"`
	SubscriberCount int64                    `json:"subscriber_count"`
}

// SubscriptionStats summarises a user's follow graph.
type SubscriptionStats struct {
	Subscribers   int64 `json:"subscribers"`
	Subscriptions int64 `json:"subscriptions"`
	IsSubscribed  bool  `json:"is_subscribed"`
}

type SubscriptionService struct {
	store      repository.Store
	dispatcher *notifications.Dispatcher
}

func NewSubscriptionService(store repository.Store, dispatcher *notifications.Dispatcher) *SubscriptionService {
	return &SubscriptionService{store: store, dispatcher: dispatcher}
}

// ToggleSubscription follows or unfollows targetID. Unfollowing leaves the
// original SUBSCRIPTION notification in place.
func (s *SubscriptionService) ToggleSubscription(ctx context.Context, actorID, targetID uint) (*SubscriptionToggleResult, error) {
	if actorID == targetID {
		return nil, models.NewBadRequestError("Cannot subscribe to yourself")
	}

	var (
		result SubscriptionToggleResult
		out    notifications.Outcome
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetForShare(ctx, targetID); err != nil {
			return err
		}
		actor, err := tx.Users().GetForShare(ctx, actorID)
		if err != nil {
			return err
		}

		outcome, err := tx.Subscriptions().Toggle(ctx, actorID, targetID)
		if err != nil {
			return toggleError(ctx, "subscription", actorID, targetID, err)
		}

		if outcome == repository.ToggleCreated {
			var events notifications.Batch
			events.Emit(targetID, actorID, models.NotificationSubscription,
				fmt.Sprintf("%s subscribed to you", actor.Username), actorID)
			if out, err = s.dispatcher.Apply(ctx, tx.Notifications(), events); err != nil {
				return err
			}
		}

		count, err := tx.Subscriptions().CountSubscribers(ctx, targetID)
		if err != nil {
			return err
		}
		result = SubscriptionToggleResult{Outcome: outcome, Subscribed: outcome == repository.ToggleCreated, SubscriberCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RelationshipToggles.WithLabelValues("subscription", string(result.Outcome)).Inc()
	s.dispatcher.Publish(ctx, out)
	return &result, nil
}

// Stats returns follow counts for userID and whether viewerID follows them.
func (s *SubscriptionService) Stats(ctx context.Context, userID, viewerID uint) (*SubscriptionStats, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	subs := s.store.Subscriptions()
	var stats SubscriptionStats
	var err error
	if stats.Subscribers, err = subs.CountSubscribers(ctx, userID); err != nil {
		return nil, err
	}
	if stats.Subscriptions, err = subs.CountSubscriptions(ctx, userID); err != nil {
		return nil, err
	}
	if viewerID != 0 && viewerID != userID {
		if stats.IsSubscribed, err = subs.IsSubscribed(ctx, viewerID, userID); err != nil {
			return nil, err
		}
	}
	return &stats, nil
}

func (s *SubscriptionService) SubscriberCount(ctx context.Context, userID uint) (int64, error) {
	return s.store.Subscriptions().CountSubscribers(ctx, userID)
}

func (s *SubscriptionService) SubscriptionCount(ctx context.Context, userID uint) (int64, error) {
	return s.store.Subscriptions().CountSubscriptions(ctx, userID)
}

func (s *SubscriptionService) IsSubscribed(ctx context.Context, subscriberID, targetID uint) (bool, error) {
	return s.store.Subscriptions().IsSubscribed(ctx, subscriberID, targetID)
}

func (s *SubscriptionService) ListSubscribers(ctx context.Context, userID uint) ([]models.User, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Subscriptions().ListSubscribers(ctx, userID)
}

func (s *SubscriptionService) ListSubscriptions(ctx context.Context, userID uint) ([]models.User, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Subscriptions().ListSubscriptions(ctx, userID)
}

func (s *SubscriptionService) requireUser(ctx context.Context, userID uint) error {
	ok, err := s.store.Users().Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("User", userID)
	}
	return nil
}
