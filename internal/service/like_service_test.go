package service

import (
	"context"
	"sync"
	"testing"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/repository"
	"github.com/madaghaxx/Noctua/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike_AliceAndBob(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, env.db, testutil.WithID(1), testutil.WithUsername("alice"))
	testutil.CreateUser(t, env.db, testutil.WithID(2), testutil.WithUsername("bob"))
	testutil.CreatePost(t, env.db, alice, func(p *models.Post) {
		p.ID = 100
		p.Title = "hello"
	})

	res, err := env.likes.ToggleLike(ctx, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, repository.ToggleCreated, res.Outcome)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.LikeCount)

	unread, err := env.notifications.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	list, err := env.notifications.ListNotifications(ctx, 1, Page{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationLike, list[0].Type)
	assert.Equal(t, uint(100), list[0].ReferenceID)
	assert.Equal(t, "bob liked your post: hello", list[0].Message)
	assert.Equal(t, 1, env.publisher.count())

	res, err = env.likes.ToggleLike(ctx, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, repository.ToggleRemoved, res.Outcome)
	assert.Equal(t, int64(0), res.LikeCount)

	unread, err = env.notifications.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestToggleLike_SelfLikeCreatesNoNotification(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db)
	post := testutil.CreatePost(t, env.db, owner)

	res, err := env.likes.ToggleLike(ctx, owner.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.ToggleCreated, res.Outcome)
	assert.Zero(t, testutil.Count(t, env.db, &models.Notification{}, ""))
	assert.Zero(t, env.publisher.count())
}

func TestToggleLike_DoubleToggleRestoresCount(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db)
	other := testutil.CreateUser(t, env.db)
	liker := testutil.CreateUser(t, env.db)
	post := testutil.CreatePost(t, env.db, owner)
	require.NoError(t, env.db.Create(&models.Like{UserID: other.ID, PostID: post.ID}).Error)

	before, err := env.likes.LikeCount(ctx, post.ID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := env.likes.ToggleLike(ctx, liker.ID, post.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, testutil.Count(t, env.db, &models.Like{}, "user_id = ? AND post_id = ?", liker.ID, post.ID), int64(1))
	}

	after, err := env.likes.LikeCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	liked, err := env.likes.HasLiked(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestToggleLike_MissingPost(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	u := testutil.CreateUser(t, env.db)

	_, err := env.likes.ToggleLike(context.Background(), u.ID, 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.Zero(t, testutil.Count(t, env.db, &models.Like{}, ""))
}

func TestToggleLike_HiddenPostIsNotFoundForOthers(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db)
	other := testutil.CreateUser(t, env.db)
	post := testutil.CreatePost(t, env.db, owner)
	require.NoError(t, env.moderation.HidePost(ctx, post.ID))

	_, err := env.likes.ToggleLike(ctx, other.ID, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.Zero(t, testutil.Count(t, env.db, &models.Like{}, ""))
	assert.Zero(t, testutil.Count(t, env.db, &models.Notification{}, ""))
	assert.Zero(t, env.publisher.count())

	res, err := env.likes.ToggleLike(ctx, owner.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
}

func TestToggleLike_ConcurrentSamePair(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db)
	liker := testutil.CreateUser(t, env.db)
	post := testutil.CreatePost(t, env.db, owner)

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.likes.ToggleLike(ctx, liker.ID, post.ID)
			if err != nil {
				assert.True(t, models.IsCode(err, models.CodeConflict), "unexpected error: %v", err)
				return
			}
			mu.Lock()
			succeeded++
			mu.Unlock()
		}()
	}
	wg.Wait()

	likes := testutil.Count(t, env.db, &models.Like{}, "user_id = ? AND post_id = ?", liker.ID, post.ID)
	assert.Equal(t, int64(succeeded%2), likes)
	assert.Equal(t, likes, testutil.Count(t, env.db, &models.Notification{},
		"recipient_id = ? AND type = ? AND reference_id = ?", owner.ID, models.NotificationLike, post.ID))
}
