package models

import "time"

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotificationLike         NotificationType = "LIKE"
	NotificationComment      NotificationType = "COMMENT"
	NotificationSubscription NotificationType = "SUBSCRIPTION"
	NotificationMention      NotificationType = "MENTION"
)

// Notification is delivered to RecipientID as a side effect of another mutation.
// ReferenceID points at the triggering post (LIKE, COMMENT) or user (SUBSCRIPTION).
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index:idx_notification_lookup" json:"recipient_id"`
	ActorID     *uint            `gorm:"index" json:"actor_id,omitempty"`
	Type        NotificationType `gorm:"type:varchar(16);not null;index:idx_notification_lookup" json:"type"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	ReferenceID uint             `gorm:"not null;index:idx_notification_lookup" json:"reference_id"`
	IsRead      bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}
