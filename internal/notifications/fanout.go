package notifications

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andalib/andalib-backend/pkg/db/models"
	"github.com/andalib/andalib-backend/pkg/logger"
	"github.com/andalib/andalib-backend/pkg/metrics"
)

const defaultPushTimeout = 10 * time.Second

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type adminLister interface {
	ListIDs(ctx context.Context) ([]int64, error)
}

type FanoutParams struct {
	DB          txRunner
	Admins      adminLister
	Repository  Repository
	Pusher      Pusher
	Logger      *logger.Logger
	Metrics     *metrics.DispatchMetrics
	PushTimeout time.Duration
}

// Fanout writes one notification row per admin and then attempts a push.
type Fanout struct {
	db          txRunner
	admins      adminLister
	repo        Repository
	pusher      Pusher
	logg        *logger.Logger
	metrics     *metrics.DispatchMetrics
	pushTimeout time.Duration
	now         func() time.Time
}

func NewFanout(params FanoutParams) (*Fanout, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Admins == nil {
		return nil, fmt.Errorf("admin lister required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	timeout := params.PushTimeout
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	return &Fanout{
		db:          params.DB,
		admins:      params.Admins,
		repo:        params.Repository,
		pusher:      params.Pusher,
		logg:        params.Logger,
		metrics:     params.Metrics,
		pushTimeout: timeout,
		now:         time.Now,
	}, nil
}

// NotifyAllAdmins creates exactly one row per existing admin, all sharing the
// event's type, title, message and metadata, and returns how many were written.
// The rows are written in one transaction. Push failures are logged only.
func (f *Fanout) NotifyAllAdmins(ctx context.Context, event Event) (int, error) {
	if err := event.validate(); err != nil {
		return 0, err
	}
	metadata, err := event.metadataJSON()
	if err != nil {
		return 0, err
	}

	adminIDs, err := f.admins.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list admins: %w", err)
	}
	if len(adminIDs) == 0 {
		f.logg.Warn(ctx, "no admins to notify")
		return 0, nil
	}

	rows := make([]models.Notification, 0, len(adminIDs))
	for _, adminID := range adminIDs {
		rows = append(rows, models.Notification{
			AdminID:  adminID,
			Type:     event.Type,
			Title:    event.Title,
			Message:  event.Message,
			Metadata: metadata,
		})
	}

	if err := f.db.WithTx(ctx, func(tx *gorm.DB) error {
		return f.repo.WithTx(tx).CreateBatch(ctx, rows)
	}); err != nil {
		return 0, fmt.Errorf("create notifications: %w", err)
	}
	f.metrics.AddRows(string(event.Type), len(rows))

	f.push(ctx, event, len(rows))
	return len(rows), nil
}

func (f *Fanout) push(ctx context.Context, event Event, recipients int) {
	if f.pusher == nil {
		f.metrics.ObservePush(metrics.OutcomeSkipped)
		return
	}

	pushCtx, cancel := context.WithTimeout(ctx, f.pushTimeout)
	defer cancel()

	err := f.pusher.Push(pushCtx, PushMessage{
		Type:       string(event.Type),
		Title:      event.Title,
		Message:    event.Message,
		Metadata:   event.Metadata,
		Recipients: recipients,
		SentAt:     f.now().UTC(),
	})
	if err != nil {
		f.logg.Error(ctx, "notification push failed", err)
		f.metrics.ObservePush(metrics.OutcomeFailure)
		return
	}
	f.metrics.ObservePush(metrics.OutcomeSuccess)
}
