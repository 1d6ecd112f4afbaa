package repository

import (
	"context"

	"github.com/madaghaxx/Noctua/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the notification store operations.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// DeleteLatest removes the newest notification matching the tuple. Zero rows is not an error.
	DeleteLatest(ctx context.Context, recipientID, actorID uint, typ models.NotificationType, referenceID uint) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	// DeleteByReference removes notifications of the given types pointing at referenceID.
	DeleteByReference(ctx context.Context, referenceID uint, types ...models.NotificationType) (int64, error)
	// DeleteByUser removes notifications received or caused by userID.
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return internal(r.db.WithContext(ctx).Create(n).Error)
}

func (r *notificationRepository) DeleteLatest(ctx context.Context, recipientID, actorID uint, typ models.NotificationType, referenceID uint) (int64, error) {
	var latest []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND actor_id = ? AND type = ? AND reference_id = ?", recipientID, actorID, typ, referenceID).
		Order("created_at desc, id desc").
		Limit(1).
		Find(&latest).Error
	if err != nil {
		return 0, internal(err)
	}
	if len(latest) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id = ?", latest[0].ID).Delete(&models.Notification{})
	return res.RowsAffected, internal(res.Error)
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, mapError(err, "Notification", id)
	}
	return &n, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at desc, id desc").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, internal(err)
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, internal(err)
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, internal(res.Error)
}

func (r *notificationRepository) DeleteByReference(ctx context.Context, referenceID uint, types ...models.NotificationType) (int64, error) {
	if len(types) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("reference_id = ? AND type IN ?", referenceID, types).
		Delete(&models.Notification{})
	return res.RowsAffected, internal(res.Error)
}

func (r *notificationRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("recipient_id = ? OR actor_id = ?", userID, userID).
		Delete(&models.Notification{})
	return res.RowsAffected, internal(res.Error)
}
