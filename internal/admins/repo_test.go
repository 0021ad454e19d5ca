package admins

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andalib/andalib-backend/pkg/db/dbtest"
	"github.com/andalib/andalib-backend/pkg/db/models"
	"github.com/andalib/andalib-backend/pkg/enums"
)

func TestRepositoryCreateAndLookup(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	admin := &models.Admin{Email: "  Rina@Andalib.test ", PasswordHash: "hash", Name: "Rina", Role: enums.AdminRoleAdmin}
	require.NoError(t, repo.Create(ctx, admin))
	require.NotZero(t, admin.ID)

	found, err := repo.FindByEmail(ctx, "RINA@andalib.test")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, found.ID)
	assert.Equal(t, "rina@andalib.test", found.Email)

	byID, err := repo.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rina", byID.Name)

	at := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, admin.ID, at))
	byID, err = repo.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.LastLoginAt)
	assert.True(t, byID.LastLoginAt.Equal(at))
}

func TestRepositoryListIDsAndCount(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	for _, email := range []string{"a@andalib.test", "b@andalib.test", "c@andalib.test"} {
		require.NoError(t, repo.Create(ctx, &models.Admin{Email: email, PasswordHash: "h", Name: email}))
	}

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.Less(t, ids[0], ids[1])

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestRepositoryRejectsDuplicateEmail(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Admin{Email: "dup@andalib.test", PasswordHash: "h", Name: "one"}))
	assert.Error(t, repo.Create(ctx, &models.Admin{Email: "DUP@andalib.test", PasswordHash: "h", Name: "two"}))
}
