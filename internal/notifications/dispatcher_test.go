package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/repository"
	"github.com/madaghaxx/Noctua/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages map[uint][]string
	err      error
}

func (p *recordingPublisher) PublishUser(_ context.Context, userID uint, payload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.messages == nil {
		p.messages = make(map[uint][]string)
	}
	p.messages[userID] = append(p.messages[userID], payload)
	return p.err
}

func TestBatch_SkipsSelfEvents(t *testing.T) {
	t.Parallel()
	var b Batch
	b.Emit(1, 1, models.NotificationLike, "self", 100)
	b.Retract(1, 1, models.NotificationLike, 100)
	b.Emit(1, 2, models.NotificationLike, "bob liked your post: Hello", 100)
	b.Retract(1, 2, models.NotificationLike, 100)

	require.Len(t, b, 2)
	assert.Equal(t, ActionEmit, b[0].Action)
	assert.Equal(t, ActionRetract, b[1].Action)
	assert.Empty(t, b[1].Message)
}

func TestDispatcher_ApplyAndPublish(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	repo := repository.NewNotificationRepository(db)
	pub := &recordingPublisher{}
	d := NewDispatcher(pub)
	ctx := context.Background()

	var emit Batch
	emit.Emit(1, 2, models.NotificationLike, "bob liked your post: Hello", 100)
	out, err := d.Apply(ctx, repo, emit)
	require.NoError(t, err)
	require.Len(t, out.Created, 1)
	require.NotNil(t, out.Created[0].ActorID)
	assert.Equal(t, uint(2), *out.Created[0].ActorID)
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Notification{}, "recipient_id = ?", 1))

	d.Publish(ctx, out)
	require.Len(t, pub.messages[1], 1)
	var envelope struct {
		Type    string              `json:"type"`
		Payload models.Notification `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(pub.messages[1][0]), &envelope))
	assert.Equal(t, EventNotificationCreated, envelope.Type)
	assert.Equal(t, "bob liked your post: Hello", envelope.Payload.Message)

	var retract Batch
	retract.Retract(1, 2, models.NotificationLike, 100)
	out, err = d.Apply(ctx, repo, retract)
	require.NoError(t, err)
	assert.Len(t, out.Retracted, 1)
	assert.Zero(t, testutil.Count(t, db, &models.Notification{}, ""))
}

func TestDispatcher_RetractWithoutMatchIsNoop(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	d := NewDispatcher(nil)

	var b Batch
	b.Retract(5, 6, models.NotificationLike, 7)
	_, err := d.Apply(context.Background(), repository.NewNotificationRepository(db), b)
	assert.NoError(t, err)
}

func TestDispatcher_PublishFailureIsSwallowed(t *testing.T) {
	t.Parallel()
	pub := &recordingPublisher{err: errors.New("redis down")}
	d := NewDispatcher(pub)

	assert.NotPanics(t, func() {
		d.Publish(context.Background(), Outcome{Created: []models.Notification{{RecipientID: 3, Message: "x"}}})
	})
	assert.Len(t, pub.messages[3], 1)
}

func TestDispatcher_UnknownActionFails(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	_, err := NewDispatcher(nil).Apply(context.Background(), repository.NewNotificationRepository(db), []Event{{Action: "bogus"}})
	assert.True(t, models.IsCode(err, models.CodeInternal))
}
