package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/madaghaxx/Noctua/internal/auth"
	"github.com/madaghaxx/Noctua/internal/config"
	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testServer struct {
	*Server
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T, flags string) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	cfg := &config.Config{
		JWTSecret:      testSecret,
		Port:           "0",
		AllowedOrigins: "*",
		FeatureFlags:   flags,
		Env:            "test",
	}
	s := NewServer(cfg, db, nil)
	return &testServer{Server: s, app: s.App(), db: db}
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := auth.IssueToken(testSecret, u.ID, string(u.Role), time.Now())
	require.NoError(t, err)
	return token
}

// do sends a request and decodes a JSON response into out when out is non-nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}
