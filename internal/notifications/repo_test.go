package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/andalib/andalib-backend/pkg/db/dbtest"
	"github.com/andalib/andalib-backend/pkg/db/models"
	"github.com/andalib/andalib-backend/pkg/enums"
)

func seedNotification(t *testing.T, repo Repository, adminID int64, createdAt time.Time) models.Notification {
	t.Helper()
	rows := []models.Notification{{
		AdminID:   adminID,
		Type:      enums.NotificationTypeMemberDeleted,
		Title:     "Anggota dihapus",
		Message:   "Anggota 2201 dihapus",
		Metadata:  datatypes.JSON(`{"memberId":1}`),
		CreatedAt: createdAt,
	}}
	require.NoError(t, repo.CreateBatch(context.Background(), rows))
	require.NotZero(t, rows[0].ID)
	return rows[0]
}

func TestRepositoryListNewestFirstWithCursor(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	base := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedNotification(t, repo, 1, base.Add(time.Duration(i)*time.Minute))
	}
	seedNotification(t, repo, 2, base.Add(time.Hour))

	page, next, err := repo.List(ctx, listNotificationsParams{AdminID: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, next)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))
	assert.True(t, page[0].CreatedAt.Equal(base.Add(4*time.Minute)))

	seen := map[int64]bool{page[0].ID: true, page[1].ID: true}
	for next != nil {
		page, next, err = repo.List(ctx, listNotificationsParams{AdminID: 1, Limit: 2, Cursor: next})
		require.NoError(t, err)
		for _, n := range page {
			assert.False(t, seen[n.ID], "row %d returned twice", n.ID)
			seen[n.ID] = true
			assert.EqualValues(t, 1, n.AdminID)
		}
	}
	assert.Len(t, seen, 5)
}

func TestRepositoryMarkReadSetsReadAtOnce(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	n := seedNotification(t, repo, 1, time.Now().UTC())
	first := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	result, err := repo.MarkRead(ctx, 1, n.ID, first)
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.True(t, result.Updated)

	result, err = repo.MarkRead(ctx, 1, n.ID, first.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.False(t, result.Updated)

	var stored models.Notification
	require.NoError(t, client.DB().First(&stored, n.ID).Error)
	assert.True(t, stored.IsRead)
	require.NotNil(t, stored.ReadAt)
	assert.True(t, stored.ReadAt.Equal(first))

	result, err = repo.MarkRead(ctx, 2, n.ID, first)
	require.NoError(t, err)
	assert.False(t, result.Found, "other admins must not see the row")
}

func TestRepositoryMarkAllReadAndDeleteAreScoped(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()
	now := time.Now().UTC()

	mine := seedNotification(t, repo, 1, now)
	seedNotification(t, repo, 1, now)
	theirs := seedNotification(t, repo, 2, now)

	updated, err := repo.MarkAllRead(ctx, 1, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	var unread int64
	require.NoError(t, client.DB().Model(&models.Notification{}).Where("is_read = ?", false).Count(&unread).Error)
	assert.EqualValues(t, 1, unread)

	deleted, err := repo.Delete(ctx, 1, theirs.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.Delete(ctx, 1, mine.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestRepositoryDeleteReadBeforeHonoursRetention(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	readAt := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	retention := 2 * time.Minute

	n7 := seedNotification(t, repo, 1, readAt.Add(-time.Hour))
	unreadOld := seedNotification(t, repo, 1, readAt.Add(-24*time.Hour))
	_, err := repo.MarkRead(ctx, 1, n7.ID, readAt)
	require.NoError(t, err)

	deleted, err := repo.DeleteReadBefore(ctx, nil, readAt.Add(time.Minute).Add(-retention))
	require.NoError(t, err)
	assert.Zero(t, deleted, "sweep one minute after reading must keep the row")

	deleted, err = repo.DeleteReadBefore(ctx, nil, readAt.Add(3*time.Minute).Add(-retention))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var remaining []models.Notification
	require.NoError(t, client.DB().Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, unreadOld.ID, remaining[0].ID, "unread rows are never swept")
}
