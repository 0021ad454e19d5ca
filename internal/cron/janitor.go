package cron

import (
	"fmt"
	"time"

	"github.com/andalib/andalib-backend/pkg/logger"
	"github.com/andalib/andalib-backend/pkg/metrics"
	"github.com/andalib/andalib-backend/pkg/redis"
)

type JanitorParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository readNotificationsRepo
	Metrics    *metrics.CronJobMetrics
	Retention  time.Duration
	Interval   time.Duration
	// Redis is optional. When set, the sweep lock is shared across instances;
	// otherwise only overlapping cycles in this process are excluded.
	Redis *redis.Client
}

// NewNotificationJanitor builds a cron service running only the read
// notification sweep.
func NewNotificationJanitor(params JanitorParams) (*Service, error) {
	job, err := NewNotificationJanitorJob(NotificationJanitorJobParams{
		Logger:     params.Logger,
		DB:         params.DB,
		Repository: params.Repository,
		Metrics:    params.Metrics,
		Retention:  params.Retention,
	})
	if err != nil {
		return nil, err
	}

	var lock Lock = NewLocalLock()
	if params.Redis != nil {
		rl, err := NewRedisLock(params.Redis, params.Redis.LockKey(notificationJanitorName), lockTTL(params.Interval))
		if err != nil {
			return nil, fmt.Errorf("janitor lock: %w", err)
		}
		lock = rl
	}

	return NewService(ServiceParams{
		Logger:   params.Logger,
		Registry: NewRegistry(job),
		Lock:     lock,
		Metrics:  params.Metrics,
		Interval: params.Interval,
	})
}

// lockTTL keeps the lock shorter than one sweep period so a crashed holder
// costs at most a single cycle.
func lockTTL(interval time.Duration) time.Duration {
	if interval <= 0 {
		interval = defaultInterval
	}
	ttl := interval - 10*time.Second
	if half := interval / 2; ttl < half {
		ttl = half
	}
	return max(ttl, time.Second)
}
