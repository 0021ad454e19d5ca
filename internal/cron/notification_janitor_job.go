package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andalib/andalib-backend/pkg/logger"
	"github.com/andalib/andalib-backend/pkg/metrics"
)

// DefaultNotificationRetention is how long a read notification survives.
const DefaultNotificationRetention = 2 * time.Minute

const notificationJanitorName = "notification-janitor"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type readNotificationsRepo interface {
	DeleteReadBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type NotificationJanitorJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository readNotificationsRepo
	Metrics    *metrics.CronJobMetrics
	Retention  time.Duration
}

// NewNotificationJanitorJob deletes notifications that were read more than
// Retention ago. Unread notifications are kept indefinitely.
func NewNotificationJanitorJob(params NotificationJanitorJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = DefaultNotificationRetention
	}
	return &notificationJanitorJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		metrics:   params.Metrics,
		retention: retention,
		now:       time.Now,
	}, nil
}

type notificationJanitorJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      readNotificationsRepo
	metrics   *metrics.CronJobMetrics
	retention time.Duration
	now       func() time.Time
}

func (j *notificationJanitorJob) Name() string { return notificationJanitorName }

func (j *notificationJanitorJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteReadBefore(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("notification janitor: %w", err)
	}
	j.metrics.AddAffected(j.Name(), deleted)

	if deleted == 0 {
		return nil
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"retention":    j.retention.String(),
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "read notifications purged")
	return nil
}
