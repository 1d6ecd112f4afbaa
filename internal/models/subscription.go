package models

import "time"

// Subscription is a directed follow from SubscriberID to TargetID.
// At most one row exists per ordered pair.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:idx_subscriber_target" json:"subscriber_id"`
	TargetID     uint      `gorm:"not null;uniqueIndex:idx_subscriber_target;index" json:"target_id"`
	CreatedAt    time.Time `json:"created_at"`
}
