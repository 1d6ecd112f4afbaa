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

func TestUserService_Reads(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, testutil.WithUsername("alice"))
	testutil.CreateUser(t, db, testutil.WithUsername("bob"))

	me, err := svc.GetMe(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	_, err = svc.GetUser(ctx, 9999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	all, err := svc.ListUsers(ctx, Page{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	first, err := svc.ListUsers(ctx, Page{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, first, 1)
}
