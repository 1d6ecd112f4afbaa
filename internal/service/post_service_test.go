package service

import (
	"context"
	"strings"
	"testing"

	"github.com/madaghaxx/Noctua/internal/cascade"
	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	u := testutil.CreateUser(t, env.db)

	tests := []struct {
		name    string
		title   string
		content string
		wantErr bool
	}{
		{"valid", "Hello", "World", false},
		{"missing title", "", "World", true},
		{"missing content", "Hello", "  ", true},
		{"title too long", strings.Repeat("a", maxTitleLen+1), "World", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := env.posts.CreatePost(context.Background(), CreatePostInput{UserID: u.ID, Title: tt.title, Content: tt.content})
			if tt.wantErr {
				assert.True(t, models.IsCode(err, models.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, u.ID, post.UserID)
			assert.Equal(t, u.ID, post.User.ID)
		})
	}
}

func TestUpdatePost_OwnerOnly(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db)
	other := testutil.CreateUser(t, env.db)
	post := testutil.CreatePost(t, env.db, owner)

	_, err := env.posts.UpdatePost(ctx, UpdatePostInput{UserID: other.ID, PostID: post.ID, Title: "x", Content: "y"})
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	updated, err := env.posts.UpdatePost(ctx, UpdatePostInput{UserID: owner.ID, PostID: post.ID, Title: "New", Content: "Body"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, owner.ID, updated.UserID)
}

func TestDeletePost_OwnerOrAdmin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db)
	stranger := testutil.CreateUser(t, env.db)
	admin := testutil.CreateUser(t, env.db, testutil.WithRole(models.RoleAdmin))
	first := testutil.CreatePost(t, env.db, owner)
	second := testutil.CreatePost(t, env.db, owner)
	_, err := env.likes.ToggleLike(ctx, stranger.ID, first.ID)
	require.NoError(t, err)

	_, err = env.posts.DeletePost(ctx, first.ID, stranger.ID)
	assert.True(t, models.IsCode(err, models.CodeForbidden))
	assert.Equal(t, int64(1), testutil.Count(t, env.db, &models.Like{}, "post_id = ?", first.ID))

	summary, err := env.posts.DeletePost(ctx, first.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.ByStep[string(cascade.LikesOnPost)])
	assert.Equal(t, int64(1), summary.ByStep[string(cascade.NotificationsOnPost)])

	_, err = env.posts.DeletePost(ctx, second.ID, admin.ID)
	require.NoError(t, err)

	_, err = env.posts.DeletePost(ctx, second.ID, owner.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.Zero(t, testutil.Count(t, env.db, &models.Post{}, ""))
}

func TestCreatePost_MissingAuthor(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	_, err := env.posts.CreatePost(context.Background(), CreatePostInput{UserID: 4242, Title: "Orphan", Content: "Nobody owns this"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.Zero(t, testutil.Count(t, env.db, &models.Post{}, ""))
}
