package validation

import (
	"strings"
	"testing"

	"github.com/madaghaxx/Noctua/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequest(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		req     RegisterRequest
		wantMsg string
	}{
		{"valid", RegisterRequest{"test_user123", "a@example.com", "password1"}, ""},
		{"missing username", RegisterRequest{"", "a@example.com", "password1"}, "username is required"},
		{"short username", RegisterRequest{"tu", "a@example.com", "password1"}, "username must be"},
		{"illegal chars", RegisterRequest{"user@123", "a@example.com", "password1"}, "username must be"},
		{"ends underscore", RegisterRequest{"user_", "a@example.com", "password1"}, "username must be"},
		{"bad email", RegisterRequest{"tester", "not-an-email", "password1"}, "email must be a valid email address"},
		{"short password", RegisterRequest{"tester", "a@example.com", "short"}, "password must be at least 8 characters"},
		{"long password", RegisterRequest{"tester", "a@example.com", strings.Repeat("p", 129)}, "password must be at most 128 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, models.IsCode(err, models.CodeValidation))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestPostAndCommentRequests(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Struct(PostRequest{Title: "t", Content: "c"}))
	assert.Error(t, Struct(PostRequest{Title: "   ", Content: "c"}))
	assert.Error(t, Struct(PostRequest{Title: strings.Repeat("t", 301), Content: "c"}))
	assert.NoError(t, Struct(CommentRequest{Content: "nice"}))
	assert.Error(t, Struct(CommentRequest{Content: "\n"}))
}

func TestReportRequest(t *testing.T) {
	t.Parallel()
	zero := uint(0)
	seven := uint(7)
	assert.Error(t, Struct(ReportRequest{Reason: "spam"}))
	assert.Error(t, Struct(ReportRequest{ReportedUserID: 2, ReportedPostID: &zero, Reason: "spam"}))
	assert.NoError(t, Struct(ReportRequest{ReportedUserID: 2, ReportedPostID: &seven, Reason: "spam"}))
	assert.NoError(t, Struct(ReportRequest{ReportedUserID: 2}))
}
