package members

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andalib/andalib-backend/internal/notifications"
	"github.com/andalib/andalib-backend/pkg/db/dbtest"
	"github.com/andalib/andalib-backend/pkg/db/models"
	"github.com/andalib/andalib-backend/pkg/enums"
	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/logger"
)

type stubNotifier struct {
	events []notifications.Event
}

func (s *stubNotifier) Enqueue(ctx context.Context, event notifications.Event) bool {
	s.events = append(s.events, event)
	return true
}

func TestDeleteSoftDeletesAndNotifies(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()
	member := &models.Member{NIM: "2101002", Name: "Dewi Lestari"}
	require.NoError(t, repo.Create(ctx, member))

	notifier := &stubNotifier{}
	svc, err := NewService(repo, notifier, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, member.ID))

	_, err = repo.FindByID(ctx, member.ID)
	assert.Error(t, err, "soft-deleted member must be hidden")
	var raw models.Member
	require.NoError(t, client.DB().Unscoped().First(&raw, "id = ?", member.ID).Error)
	assert.True(t, raw.DeletedAt.Valid)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, enums.NotificationTypeMemberDeleted, notifier.events[0].Type)
	assert.Contains(t, notifier.events[0].Message, "2101002")
	assert.Equal(t, member.ID, notifier.events[0].Metadata["memberId"])

	err = svc.Delete(ctx, member.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	assert.Len(t, notifier.events, 1)
}

func TestDeleteWithoutNotifier(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()
	member := &models.Member{NIM: "2101003", Name: "Eka"}
	require.NoError(t, repo.Create(ctx, member))

	svc, err := NewService(repo, nil, logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(ctx, member.ID))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(svc.Delete(ctx, 0)))
}

func TestSearchEscapesWildcards(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Member{NIM: "100", Name: "Fajar"}))
	require.NoError(t, repo.Create(ctx, &models.Member{NIM: "200", Name: "Gita_50%"}))

	rows, err := repo.Search(ctx, "%", 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Gita_50%", rows[0].Name)

	rows, err = repo.Search(ctx, "FAJ", 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100", rows[0].NIM)
}
