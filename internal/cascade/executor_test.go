package cascade

import (
	"context"
	"errors"
	"testing"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/repository"
	"github.com/madaghaxx/Noctua/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type scenario struct {
	db      *gorm.DB
	u, v    *models.User
	p1, p2  *models.Post
	vPost   *models.Post
	report  *models.Report
	reportV *models.Report
}

// seedScenario builds user U owning two posts, and user V who interacts with
// U in every way the schema allows, plus V's own post liked by U.
func seedScenario(t *testing.T) *scenario {
	t.Helper()
	db := testutil.NewTestDB(t)
	s := &scenario{db: db}
	s.u = testutil.CreateUser(t, db)
	s.v = testutil.CreateUser(t, db)
	s.p1 = testutil.CreatePost(t, db, s.u)
	s.p2 = testutil.CreatePost(t, db, s.u)
	s.vPost = testutil.CreatePost(t, db, s.v)

	require.NoError(t, db.Create(&[]models.Like{
		{UserID: s.v.ID, PostID: s.p1.ID},
		{UserID: s.u.ID, PostID: s.p1.ID},
		{UserID: s.u.ID, PostID: s.vPost.ID},
	}).Error)
	testutil.CreateComment(t, db, s.v, s.p2)
	testutil.CreateComment(t, db, s.u, s.vPost)
	testutil.CreateComment(t, db, s.v, s.vPost)
	require.NoError(t, db.Create(&[]models.Subscription{
		{SubscriberID: s.v.ID, TargetID: s.u.ID},
		{SubscriberID: s.u.ID, TargetID: s.v.ID},
	}).Error)
	require.NoError(t, db.Create(&models.Media{PostID: s.p1.ID, Name: "p1.png", FilePath: "/m/p1.png", FileType: "image/png"}).Error)

	s.report = &models.Report{ReporterID: s.v.ID, ReportedUserID: s.u.ID, ReportedPostID: &s.p1.ID, Reason: "spam"}
	require.NoError(t, db.Create(s.report).Error)

	uID, vID := s.u.ID, s.v.ID
	require.NoError(t, db.Create(&[]models.Notification{
		{RecipientID: s.u.ID, ActorID: &vID, Type: models.NotificationLike, Message: "v liked", ReferenceID: s.p1.ID},
		{RecipientID: s.u.ID, ActorID: &vID, Type: models.NotificationSubscription, Message: "v subscribed", ReferenceID: vID},
		{RecipientID: s.v.ID, ActorID: &uID, Type: models.NotificationLike, Message: "u liked", ReferenceID: s.vPost.ID},
		{RecipientID: s.v.ID, ActorID: &uID, Type: models.NotificationSubscription, Message: "u subscribed", ReferenceID: uID},
	}).Error)
	return s
}

func TestDeleteUser_RemovesEverythingReferencingUser(t *testing.T) {
	t.Parallel()
	s := seedScenario(t)
	// A third user's report about V, pointing at U's post, must survive detached.
	w := testutil.CreateUser(t, s.db)
	s.reportV = &models.Report{ReporterID: w.ID, ReportedUserID: s.v.ID, ReportedPostID: &s.p2.ID, Reason: "context"}
	require.NoError(t, s.db.Create(s.reportV).Error)

	res, err := NewDeleter(repository.NewStore(s.db)).DeleteUser(context.Background(), s.u.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Rows(UserRow))
	assert.Equal(t, int64(2), res.Rows(PostRow))

	db := s.db
	uID := s.u.ID
	assert.Zero(t, testutil.Count(t, db, &models.User{}, "id = ?", uID))
	assert.Zero(t, testutil.Count(t, db, &models.Post{}, "user_id = ?", uID))
	assert.Zero(t, testutil.Count(t, db, &models.Like{}, "user_id = ? OR post_id IN ?", uID, []uint{s.p1.ID, s.p2.ID}))
	assert.Zero(t, testutil.Count(t, db, &models.Comment{}, "user_id = ? OR post_id IN ?", uID, []uint{s.p1.ID, s.p2.ID}))
	assert.Zero(t, testutil.Count(t, db, &models.Subscription{}, "subscriber_id = ? OR target_id = ?", uID, uID))
	assert.Zero(t, testutil.Count(t, db, &models.Report{}, "reporter_id = ? OR reported_user_id = ?", uID, uID))
	assert.Zero(t, testutil.Count(t, db, &models.Notification{}, "recipient_id = ? OR actor_id = ?", uID, uID))
	assert.Zero(t, testutil.Count(t, db, &models.Media{}, ""))

	// V keeps their own post, their comment on it and W's report.
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Post{}, "user_id = ?", s.v.ID))
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Comment{}, "user_id = ?", s.v.ID))
	var kept models.Report
	require.NoError(t, db.First(&kept, s.reportV.ID).Error)
	assert.Nil(t, kept.ReportedPostID)
}

func TestDeletePost_OnlyTouchesThatPost(t *testing.T) {
	t.Parallel()
	s := seedScenario(t)

	res, err := NewDeleter(repository.NewStore(s.db)).DeletePost(context.Background(), s.p1.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Rows(LikesOnPost))
	assert.Equal(t, int64(1), res.Rows(NotificationsOnPost))
	assert.Equal(t, int64(1), res.Rows(DetachPostReports))

	db := s.db
	assert.Zero(t, testutil.Count(t, db, &models.Post{}, "id = ?", s.p1.ID))
	assert.Zero(t, testutil.Count(t, db, &models.Like{}, "post_id = ?", s.p1.ID))
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Like{}, "post_id = ?", s.vPost.ID))
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Post{}, "id = ?", s.p2.ID))
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.User{}, "id = ?", s.u.ID))

	var report models.Report
	require.NoError(t, db.First(&report, s.report.ID).Error)
	assert.Nil(t, report.ReportedPostID)
	assert.Equal(t, models.ReportPending, report.Status)
}

func TestDeletePost_AuthorizeVetoLeavesRowsIntact(t *testing.T) {
	t.Parallel()
	s := seedScenario(t)
	veto := models.NewForbiddenError("You can only delete your own posts")

	_, err := NewDeleter(repository.NewStore(s.db)).DeletePost(context.Background(), s.p1.ID, func(*models.Post) error {
		return veto
	})
	assert.True(t, models.IsCode(err, models.CodeForbidden))
	assert.Equal(t, int64(1), testutil.Count(t, s.db, &models.Post{}, "id = ?", s.p1.ID))
	assert.Equal(t, int64(2), testutil.Count(t, s.db, &models.Like{}, "post_id = ?", s.p1.ID))
}

func TestDelete_MissingRootIsNotFound(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	d := NewDeleter(repository.NewStore(db))

	_, err := d.DeletePost(context.Background(), 404, nil)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	_, err = d.DeleteUser(context.Background(), 404, nil)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestRun_UnknownStepIsInternal(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	plan := Plan{Root: RootPost, RootID: 1, Steps: []Step{{Kind: "bogus", TargetID: 1}}}

	_, err := NewExecutor().Run(context.Background(), repository.NewStore(db), plan)
	assert.True(t, models.IsCode(err, models.CodeInternal))
}

func TestDeletePost_StepFailureRollsBack(t *testing.T) {
	t.Parallel()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "posts" .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "user_id"}).AddRow(7, "t", "c", 1))
	mock.ExpectExec(`DELETE FROM "likes"`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "comments"`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err = NewDeleter(repository.NewStore(db)).DeletePost(context.Background(), 7, nil)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}
