package service

import (
	"context"
	"testing"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/repository"
	"github.com/madaghaxx/Noctua/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleSubscription_SelfIsBadRequest(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	u := testutil.CreateUser(t, env.db)

	_, err := env.subscriptions.ToggleSubscription(context.Background(), u.ID, u.ID)
	assert.True(t, models.IsCode(err, models.CodeBadRequest))
	assert.Zero(t, testutil.Count(t, env.db, &models.Subscription{}, ""))
}

func TestToggleSubscription_CreateNotifiesRemoveKeepsNotification(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := testutil.CreateUser(t, env.db, testutil.WithUsername("alice"))
	bob := testutil.CreateUser(t, env.db)

	res, err := env.subscriptions.ToggleSubscription(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.ToggleCreated, res.Outcome)
	assert.Equal(t, int64(1), res.SubscriberCount)

	var n models.Notification
	require.NoError(t, env.db.Where("recipient_id = ?", bob.ID).First(&n).Error)
	assert.Equal(t, models.NotificationSubscription, n.Type)
	assert.Equal(t, alice.ID, n.ReferenceID)
	assert.Equal(t, "alice subscribed to you", n.Message)

	res, err = env.subscriptions.ToggleSubscription(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.ToggleRemoved, res.Outcome)
	assert.Zero(t, res.SubscriberCount)
	assert.Equal(t, int64(1), testutil.Count(t, env.db, &models.Notification{}, "recipient_id = ?", bob.ID))
}

func TestToggleSubscription_MissingTarget(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	u := testutil.CreateUser(t, env.db)

	_, err := env.subscriptions.ToggleSubscription(context.Background(), u.ID, 777)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestSubscriptionReads(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db)
	b := testutil.CreateUser(t, env.db)
	c := testutil.CreateUser(t, env.db)

	for _, pair := range [][2]uint{{a.ID, b.ID}, {c.ID, b.ID}, {b.ID, a.ID}} {
		_, err := env.subscriptions.ToggleSubscription(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	stats, err := env.subscriptions.Stats(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Subscribers)
	assert.Equal(t, int64(1), stats.Subscriptions)
	assert.True(t, stats.IsSubscribed)

	followers, err := env.subscriptions.ListSubscribers(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	following, err := env.subscriptions.ListSubscriptions(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, a.ID, following[0].ID)

	_, err = env.subscriptions.ListSubscribers(ctx, 9999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
