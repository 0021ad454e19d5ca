package notifications

import (
	"context"
	"time"

	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/pagination"
)

// Service defines the admin inbox operations. Every call is scoped to the
// calling admin's own rows.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, adminID, notificationID int64) error
	MarkAllRead(ctx context.Context, adminID int64) (int64, error)
	Delete(ctx context.Context, adminID, notificationID int64) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ListParams configures pagination for notifications.
type ListParams struct {
	AdminID    int64
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []NotificationDTO `json:"items"`
	Cursor string            `json:"cursor,omitempty"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.AdminID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id required")
	}

	query := listNotificationsParams{
		AdminID:    params.AdminID,
		Limit:      pagination.NormalizeLimit(params.Limit),
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list notifications")
	}
	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, NewNotificationDTO(row))
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  items,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, adminID, notificationID int64) error {
	if adminID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin id required")
	}
	if notificationID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, adminID, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, adminID int64) (int64, error) {
	if adminID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "admin id required")
	}

	count, err := s.repo.MarkAllRead(ctx, adminID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) Delete(ctx context.Context, adminID, notificationID int64) error {
	if adminID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin id required")
	}
	if notificationID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	deleted, err := s.repo.Delete(ctx, adminID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "delete notification")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}
