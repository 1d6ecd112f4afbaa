package service

import (
	"context"
	"testing"
	"time"

	"github.com/madaghaxx/Noctua/internal/cache"
	"github.com/madaghaxx/Noctua/internal/cascade"
	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReport(t *testing.T, env *testEnv) *models.Report {
	t.Helper()
	a := testutil.CreateUser(t, env.db)
	b := testutil.CreateUser(t, env.db)
	r, err := env.reports.CreateReport(context.Background(), CreateReportInput{ReporterID: a.ID, ReportedUserID: b.ID, Reason: "spam"})
	require.NoError(t, err)
	return r
}

func TestResolveReport_StampsAndGuards(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.moderation.now = func() time.Time { return fixed }
	ctx := context.Background()
	r := seedReport(t, env)

	got, err := env.moderation.ResolveReport(ctx, r.ID, "warned user")
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, got.Status)
	assert.Equal(t, "warned user", got.AdminNote)
	require.NotNil(t, got.ResolvedAt)
	assert.True(t, fixed.Equal(got.ResolvedAt.UTC()))

	_, err = env.moderation.ResolveReport(ctx, r.ID, "again")
	assert.True(t, models.IsCode(err, models.CodeConflict))
	_, err = env.moderation.DismissReport(ctx, r.ID, "changed my mind")
	assert.True(t, models.IsCode(err, models.CodeConflict))

	var stored models.Report
	require.NoError(t, env.db.First(&stored, r.ID).Error)
	assert.Equal(t, models.ReportResolved, stored.Status)
	assert.Equal(t, "warned user", stored.AdminNote)
}

func TestDismissReport_EmptyNoteAndMissing(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	r := seedReport(t, env)

	got, err := env.moderation.DismissReport(ctx, r.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.ReportDismissed, got.Status)
	assert.Empty(t, got.AdminNote)

	_, err = env.moderation.DismissReport(ctx, 9999, "")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestBanUnban(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	u := testutil.CreateUser(t, env.db)
	post := testutil.CreatePost(t, env.db, u)
	admin := testutil.CreateUser(t, env.db, testutil.WithRole(models.RoleAdmin))

	banned, err := env.moderation.BanUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBanned, banned.Status)
	// Ban does not cascade.
	assert.Equal(t, int64(1), testutil.Count(t, env.db, &models.Post{}, "id = ?", post.ID))

	list, err := env.moderation.ListUsersByStatus(ctx, models.StatusBanned, Page{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, u.ID, list[0].ID)

	active, err := env.moderation.UnbanUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, active.Status)

	_, err = env.moderation.BanUser(ctx, admin.ID)
	assert.True(t, models.IsCode(err, models.CodeBadRequest))
	_, err = env.moderation.BanUser(ctx, 5555)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	_, err = env.moderation.ListUsersByStatus(ctx, "SUSPENDED", Page{})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestSetRole(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	u := testutil.CreateUser(t, env.db)

	require.NoError(t, env.moderation.SetRole(ctx, u.ID, models.RoleAdmin))
	_, err := env.moderation.BanUser(ctx, u.ID)
	assert.True(t, models.IsCode(err, models.CodeBadRequest))

	require.NoError(t, env.moderation.SetRole(ctx, u.ID, models.RoleUser))
	_, err = env.moderation.BanUser(ctx, u.ID)
	require.NoError(t, err)

	assert.True(t, models.IsCode(env.moderation.SetRole(ctx, u.ID, "ROOT"), models.CodeValidation))
	assert.True(t, models.IsCode(env.moderation.SetRole(ctx, 5555, models.RoleAdmin), models.CodeNotFound))
}

func TestDeleteUser_CascadeCompleteness(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	admin := testutil.CreateUser(t, env.db, testutil.WithRole(models.RoleAdmin))
	u := testutil.CreateUser(t, env.db)
	v := testutil.CreateUser(t, env.db)
	w := testutil.CreateUser(t, env.db)
	p := testutil.CreatePost(t, env.db, u)

	_, err := env.likes.ToggleLike(ctx, v.ID, p.ID)
	require.NoError(t, err)
	c, err := env.comments.CreateComment(ctx, CreateCommentInput{UserID: v.ID, PostID: p.ID, Content: "nice"})
	require.NoError(t, err)
	_, err = env.subscriptions.ToggleSubscription(ctx, w.ID, u.ID)
	require.NoError(t, err)
	_, err = env.reports.CreateReport(ctx, CreateReportInput{ReporterID: v.ID, ReportedUserID: u.ID, Reason: "spam"})
	require.NoError(t, err)

	summary, err := env.moderation.DeleteUser(ctx, admin.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.ByStep[string(cascade.UserRow)])

	db := env.db
	assert.Zero(t, testutil.Count(t, db, &models.Post{}, "id = ?", p.ID))
	assert.Zero(t, testutil.Count(t, db, &models.Like{}, "post_id = ?", p.ID))
	assert.Zero(t, testutil.Count(t, db, &models.Comment{}, "id = ?", c.ID))
	assert.Zero(t, testutil.Count(t, db, &models.Subscription{}, "target_id = ?", u.ID))
	assert.Zero(t, testutil.Count(t, db, &models.Report{}, "reported_user_id = ?", u.ID))
	assert.Zero(t, testutil.Count(t, db, &models.Notification{}, "recipient_id = ?", u.ID))
	assert.Equal(t, int64(2), testutil.Count(t, db, &models.User{}, "id IN ?", []uint{v.ID, w.ID}))

	// The deleted user's post is gone for later toggles too.
	_, err = env.likes.ToggleLike(ctx, v.ID, p.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	_, err = env.moderation.DeleteUser(ctx, admin.ID, u.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	_, err = env.moderation.DeleteUser(ctx, admin.ID, admin.ID)
	assert.True(t, models.IsCode(err, models.CodeBadRequest))
}

func TestHidePost_ExcludedFromListingsAndFeed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db)
	reader := testutil.CreateUser(t, env.db)
	post := testutil.CreatePost(t, env.db, owner)
	_, err := env.subscriptions.ToggleSubscription(ctx, reader.ID, owner.ID)
	require.NoError(t, err)

	require.NoError(t, env.moderation.HidePost(ctx, post.ID))
	feed, err := env.posts.Feed(ctx, reader.ID, Page{})
	require.NoError(t, err)
	assert.Empty(t, feed)
	_, err = env.posts.GetPost(ctx, post.ID, reader.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	own, err := env.posts.GetPost(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, own.Hidden)

	require.NoError(t, env.moderation.UnhidePost(ctx, post.ID))
	feed, err = env.posts.Feed(ctx, reader.ID, Page{})
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	assert.True(t, models.IsCode(env.moderation.HidePost(ctx, 9999), models.CodeNotFound))
}

func TestAnalytics_CachedAndInvalidated(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	env := newTestEnv(t, cache.New(rdb))
	ctx := context.Background()
	r := seedReport(t, env)

	a, err := env.moderation.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), a.TotalUsers)
	assert.Equal(t, int64(1), a.PendingReports)
	assert.True(t, mr.Exists(cache.AnalyticsKey))

	// Rows written behind the service's back are not visible until the TTL or an invalidation.
	testutil.CreateUser(t, env.db)
	cached, err := env.moderation.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached.TotalUsers)

	_, err = env.moderation.ResolveReport(ctx, r.ID, "")
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.AnalyticsKey))

	fresh, err := env.moderation.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fresh.TotalUsers)
	assert.Zero(t, fresh.PendingReports)
	assert.Equal(t, int64(1), fresh.TotalReports)
}

func TestListReports_FilterByStatus(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	ctx := context.Background()
	r1 := seedReport(t, env)
	seedReport(t, env)
	_, err := env.moderation.ResolveReport(ctx, r1.ID, "")
	require.NoError(t, err)

	pending, err := env.moderation.ListReports(ctx, models.ReportPending, Page{})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	all, err := env.moderation.ListReports(ctx, "", Page{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	_, err = env.moderation.ListReports(ctx, "OPEN", Page{})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}
