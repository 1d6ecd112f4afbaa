package service

import (
	"context"
	"testing"

	"github.com/madaghaxx/Noctua/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	createFn            func(context.Context, *models.Notification) error
	deleteLatestFn      func(context.Context, uint, uint, models.NotificationType, uint) (int64, error)
	getByIDFn           func(context.Context, uint) (*models.Notification, error)
	listByRecipientFn   func(context.Context, uint, int, int) ([]models.Notification, error)
	countUnreadFn       func(context.Context, uint) (int64, error)
	markReadFn          func(context.Context, uint) error
	markAllReadFn       func(context.Context, uint) (int64, error)
	deleteByReferenceFn func(context.Context, uint, ...models.NotificationType) (int64, error)
	deleteByUserFn      func(context.Context, uint) (int64, error)
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) DeleteLatest(ctx context.Context, recipientID, actorID uint, typ models.NotificationType, referenceID uint) (int64, error) {
	return s.deleteLatestFn(ctx, recipientID, actorID, typ, referenceID)
}
func (s *notificationRepoStub) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	return s.getByIDFn(ctx, id)
}
func (s *notificationRepoStub) ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error) {
	return s.listByRecipientFn(ctx, recipientID, limit, offset)
}
func (s *notificationRepoStub) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	return s.countUnreadFn(ctx, recipientID)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, id uint) error {
	return s.markReadFn(ctx, id)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.markAllReadFn(ctx, recipientID)
}
func (s *notificationRepoStub) DeleteByReference(ctx context.Context, referenceID uint, types ...models.NotificationType) (int64, error) {
	return s.deleteByReferenceFn(ctx, referenceID, types...)
}
func (s *notificationRepoStub) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	return s.deleteByUserFn(ctx, userID)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn:       func(_ context.Context, _ *models.Notification) error { return nil },
		deleteLatestFn: func(_ context.Context, _, _ uint, _ models.NotificationType, _ uint) (int64, error) { return 0, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Notification, error) {
			return nil, models.NewNotFoundError("Notification", id)
		},
		listByRecipientFn:   func(_ context.Context, _ uint, _, _ int) ([]models.Notification, error) { return nil, nil },
		countUnreadFn:       func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		markReadFn:          func(_ context.Context, _ uint) error { return nil },
		markAllReadFn:       func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		deleteByReferenceFn: func(_ context.Context, _ uint, _ ...models.NotificationType) (int64, error) { return 0, nil },
		deleteByUserFn:      func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

func TestMarkAsRead(t *testing.T) {
	t.Parallel()

	t.Run("other user's notification is forbidden", func(t *testing.T) {
		repo := noopNotificationRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Notification, error) {
			return &models.Notification{ID: id, RecipientID: 1}, nil
		}
		repo.markReadFn = func(_ context.Context, _ uint) error {
			t.Fatal("MarkRead must not be called")
			return nil
		}
		_, err := NewNotificationService(repo).MarkAsRead(context.Background(), 2, 10)
		assert.True(t, models.IsCode(err, models.CodeForbidden))
	})

	t.Run("owner marks as read", func(t *testing.T) {
		repo := noopNotificationRepo()
		var marked uint
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Notification, error) {
			return &models.Notification{ID: id, RecipientID: 1}, nil
		}
		repo.markReadFn = func(_ context.Context, id uint) error {
			marked = id
			return nil
		}
		n, err := NewNotificationService(repo).MarkAsRead(context.Background(), 1, 10)
		require.NoError(t, err)
		assert.True(t, n.IsRead)
		assert.Equal(t, uint(10), marked)
	})

	t.Run("already read is a no-op", func(t *testing.T) {
		repo := noopNotificationRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Notification, error) {
			return &models.Notification{ID: id, RecipientID: 1, IsRead: true}, nil
		}
		repo.markReadFn = func(_ context.Context, _ uint) error {
			t.Fatal("MarkRead must not be called")
			return nil
		}
		_, err := NewNotificationService(repo).MarkAsRead(context.Background(), 1, 10)
		assert.NoError(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := NewNotificationService(noopNotificationRepo()).MarkAsRead(context.Background(), 1, 10)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})
}

func TestListNotifications_ClampsPage(t *testing.T) {
	t.Parallel()
	repo := noopNotificationRepo()
	var gotLimit, gotOffset int
	repo.listByRecipientFn = func(_ context.Context, _ uint, limit, offset int) ([]models.Notification, error) {
		gotLimit, gotOffset = limit, offset
		return nil, nil
	}
	_, err := NewNotificationService(repo).ListNotifications(context.Background(), 1, Page{Limit: 5000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, gotLimit)
	assert.Zero(t, gotOffset)
}
