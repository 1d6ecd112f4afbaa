package service

import (
	"context"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/repository"
)

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// ListNotifications returns userID's notifications newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uint, page Page) ([]models.Notification, error) {
	page = page.normalize()
	return s.repo.ListByRecipient(ctx, userID, page.Limit, page.Offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkAsRead marks one of userID's notifications as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uint) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != userID {
		return nil, models.NewForbiddenError("You can only mark your own notifications as read")
	}
	if !n.IsRead {
		if err := s.repo.MarkRead(ctx, notificationID); err != nil {
			return nil, err
		}
		n.IsRead = true
	}
	return n, nil
}

// MarkAllAsRead marks every unread notification of userID and returns how many changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
