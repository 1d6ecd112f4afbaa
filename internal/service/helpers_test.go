package service

import (
	"context"
	"sync"
	"testing"

	"github.com/madaghaxx/Noctua/internal/cache"
	"github.com/madaghaxx/Noctua/internal/cascade"
	"github.com/madaghaxx/Noctua/internal/notifications"
	"github.com/madaghaxx/Noctua/internal/repository"
	"github.com/madaghaxx/Noctua/internal/testutil"

	"gorm.io/gorm"
)

type publishedMessage struct {
	userID  uint
	payload string
}

type capturePublisher struct {
	mu   sync.Mutex
	sent []publishedMessage
}

func (p *capturePublisher) PublishUser(_ context.Context, userID uint, payload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, publishedMessage{userID: userID, payload: payload})
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type testEnv struct {
	db            *gorm.DB
	store         repository.Store
	publisher     *capturePublisher
	likes         *LikeService
	subscriptions *SubscriptionService
	reports       *ReportService
	moderation    *ModerationService
	posts         *PostService
	comments      *CommentService
	notifications *NotificationService
}

// newTestEnv wires every service over a fresh sqlite store. c may be nil.
func newTestEnv(t *testing.T, c *cache.Cache) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := repository.NewStore(db)
	pub := &capturePublisher{}
	dispatcher := notifications.NewDispatcher(pub)
	deleter := cascade.NewDeleter(store)

	return &testEnv{
		db:            db,
		store:         store,
		publisher:     pub,
		likes:         NewLikeService(store, dispatcher),
		subscriptions: NewSubscriptionService(store, dispatcher),
		reports:       NewReportService(store, c),
		moderation:    NewModerationService(store, deleter, c),
		posts:         NewPostService(store, deleter, c),
		comments:      NewCommentService(store, dispatcher),
		notifications: NewNotificationService(store.Notifications()),
	}
}
