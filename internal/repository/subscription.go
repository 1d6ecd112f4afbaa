package repository

import (
	"context"

	"github.com/madaghaxx/Noctua/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository defines the relationship store operations for follows.
type SubscriptionRepository interface {
	// Toggle must be called on a transaction-bound repository.
	Toggle(ctx context.Context, subscriberID, targetID uint) (ToggleOutcome, error)
	IsSubscribed(ctx context.Context, subscriberID, targetID uint) (bool, error)
	CountSubscribers(ctx context.Context, userID uint) (int64, error)
	CountSubscriptions(ctx context.Context, userID uint) (int64, error)
	ListSubscribers(ctx context.Context, userID uint) ([]models.User, error)
	ListSubscriptions(ctx context.Context, userID uint) ([]models.User, error)
	// DeleteByUser removes every subscription where userID is either side.
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Toggle(ctx context.Context, subscriberID, targetID uint) (ToggleOutcome, error) {
	key := pairKey{actorColumn: "subscriber_id", targetColumn: "target_id", actorID: subscriberID, targetID: targetID}
	return togglePair(ctx, r.db, key, func() *models.Subscription {
		return &models.Subscription{SubscriberID: subscriberID, TargetID: targetID}
	})
}

func (r *subscriptionRepository) IsSubscribed(ctx context.Context, subscriberID, targetID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND target_id = ?", subscriberID, targetID).
		Count(&count).Error
	return count > 0, internal(err)
}

func (r *subscriptionRepository) CountSubscribers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).Where("target_id = ?", userID).Count(&count).Error
	return count, internal(err)
}

func (r *subscriptionRepository) CountSubscriptions(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).Where("subscriber_id = ?", userID).Count(&count).Error
	return count, internal(err)
}

func (r *subscriptionRepository) ListSubscribers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.subscriber_id = users.id").
		Where("subscriptions.target_id = ?", userID).
		Order("subscriptions.created_at desc, subscriptions.id desc").
		Find(&users).Error
	return users, internal(err)
}

func (r *subscriptionRepository) ListSubscriptions(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.target_id = users.id").
		Where("subscriptions.subscriber_id = ?", userID).
		Order("subscriptions.created_at desc, subscriptions.id desc").
		Find(&users).Error
	return users, internal(err)
}

func (r *subscriptionRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("subscriber_id = ? OR target_id = ?", userID, userID).
		Delete(&models.Subscription{})
	return res.RowsAffected, internal(res.Error)
}
