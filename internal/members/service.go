package members

import (
	"context"
	"fmt"

	"github.com/andalib/andalib-backend/internal/notifications"
	"github.com/andalib/andalib-backend/pkg/db"
	"github.com/andalib/andalib-backend/pkg/enums"
	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/logger"
)

type Service interface {
	Delete(ctx context.Context, memberID int64) error
}

// Notifier accepts fire-and-forget admin notifications.
type Notifier interface {
	Enqueue(ctx context.Context, event notifications.Event) bool
}

type service struct {
	repo     *Repository
	notifier Notifier
	logg     *logger.Logger
}

func NewService(repo *Repository, notifier Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, notifier: notifier, logg: logg}, nil
}

// Delete soft-deletes the member and tells every admin about it. Loans and
// returns keep pointing at the row.
func (s *service) Delete(ctx context.Context, memberID int64) error {
	if memberID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid member id")
	}
	member, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load member")
	}

	deleted, err := s.repo.SoftDelete(ctx, memberID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "delete member")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"member_id": member.ID, "nim": member.NIM})
	s.logg.Info(logCtx, "member deleted")

	if s.notifier == nil {
		return nil
	}
	event := notifications.Event{
		Type:    enums.NotificationTypeMemberDeleted,
		Title:   "Anggota dihapus",
		Message: fmt.Sprintf("Anggota %s (%s) telah dihapus.", member.Name, member.NIM),
		Metadata: map[string]any{
			"memberId": member.ID,
			"nim":      member.NIM,
			"nama":     member.Name,
		},
	}
	if !s.notifier.Enqueue(ctx, event) {
		s.logg.Warn(logCtx, "member deleted notification dropped")
	}
	return nil
}
