package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups every repository over one connection or one open transaction.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
	Likes() LikeRepository
	Subscriptions() SubscriptionRepository
	Reports() ReportRepository
	Notifications() NotificationRepository
	Media() MediaRepository
	// DB exposes the underlying handle, bound to the transaction when inside one.
	DB() *gorm.DB
	// Transaction runs fn against a Store bound to a new transaction. fn's error rolls it back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store backed by db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                 { return NewUserRepository(s.db) }
func (s *gormStore) Posts() PostRepository                 { return NewPostRepository(s.db) }
func (s *gormStore) Comments() CommentRepository           { return NewCommentRepository(s.db) }
func (s *gormStore) Likes() LikeRepository                 { return NewLikeRepository(s.db) }
func (s *gormStore) Subscriptions() SubscriptionRepository { return NewSubscriptionRepository(s.db) }
func (s *gormStore) Reports() ReportRepository             { return NewReportRepository(s.db) }
func (s *gormStore) Notifications() NotificationRepository { return NewNotificationRepository(s.db) }
func (s *gormStore) Media() MediaRepository                { return NewMediaRepository(s.db) }
func (s *gormStore) DB() *gorm.DB                          { return s.db }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
