package testutil

import (
	"testing"

	"github.com/madaghaxx/Noctua/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateUser persists an active user with fake profile data.
func CreateUser(t *testing.T, db *gorm.DB, overrides ...func(*models.User)) *models.User {
	t.Helper()
	user := &models.User{
		Username: gofakeit.Username() + gofakeit.DigitN(6),
		Email:    gofakeit.DigitN(6) + gofakeit.Email(),
		Password: "not-a-real-hash",
		Role:     models.RoleUser,
		Status:   models.StatusActive,
		Bio:      gofakeit.Sentence(6),
	}
	for _, o := range overrides {
		o(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreatePost persists a post owned by owner.
func CreatePost(t *testing.T, db *gorm.DB, owner *models.User, overrides ...func(*models.Post)) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:   gofakeit.Sentence(4),
		Content: gofakeit.Paragraph(1, 2, 8, " "),
		UserID:  owner.ID,
	}
	for _, o := range overrides {
		o(post)
	}
	require.NoError(t, db.Omit("User").Create(post).Error)
	return post
}

// CreateComment persists a comment by author on post.
func CreateComment(t *testing.T, db *gorm.DB, author *models.User, post *models.Post) *models.Comment {
	t.Helper()
	comment := &models.Comment{Content: gofakeit.Sentence(8), UserID: author.ID, PostID: post.ID}
	require.NoError(t, db.Omit("User").Create(comment).Error)
	return comment
}

// WithID pins a primary key, for scenarios that name concrete ids.
func WithID(id uint) func(*models.User) {
	return func(u *models.User) { u.ID = id }
}

// WithUsername sets the username.
func WithUsername(name string) func(*models.User) {
	return func(u *models.User) { u.Username = name }
}

// WithRole sets the role.
func WithRole(role models.Role) func(*models.User) {
	return func(u *models.User) { u.Role = role }
}

// Count returns the number of rows of model matching the optional condition.
func Count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
