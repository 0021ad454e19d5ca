package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/logger"
	"github.com/andalib/andalib-backend/pkg/metrics"
)

const (
	defaultQueueSize = 256
	defaultWorkers   = 1
	defaultTaskLimit = 30 * time.Second
)

// AdminNotifier performs the synchronous fan-out for one event.
type AdminNotifier interface {
	NotifyAllAdmins(ctx context.Context, event Event) (int, error)
}

type DispatcherParams struct {
	Notifier  AdminNotifier
	Logger    *logger.Logger
	Metrics   *metrics.DispatchMetrics
	QueueSize int
	Workers   int
	// TaskTimeout bounds one fan-out including its push attempt.
	TaskTimeout time.Duration
}

type task struct {
	event      Event
	enqueuedAt time.Time
}

// Dispatcher runs fan-outs off the request path through a bounded queue.
// Enqueue never blocks; when the queue is full the event is dropped, logged
// and counted.
type Dispatcher struct {
	notifier    AdminNotifier
	logg        *logger.Logger
	metrics     *metrics.DispatchMetrics
	queue       chan task
	workers     int
	taskTimeout time.Duration

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Notifier == nil {
		return nil, fmt.Errorf("admin notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	size := params.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	workers := params.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	timeout := params.TaskTimeout
	if timeout <= 0 {
		timeout = defaultTaskLimit
	}
	return &Dispatcher{
		notifier:    params.Notifier,
		logg:        params.Logger,
		metrics:     params.Metrics,
		queue:       make(chan task, size),
		workers:     workers,
		taskTimeout: timeout,
	}, nil
}

// Start launches the worker goroutines. Workers keep draining after ctx is
// canceled until Close is called, so queued events are not lost on shutdown.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	base := context.WithoutCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(d.logg.WithField(base, "worker", i))
	}
}

// Enqueue schedules a fan-out and reports whether it was accepted.
func (d *Dispatcher) Enqueue(ctx context.Context, event Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	logCtx := d.logg.WithField(ctx, "notification_type", string(event.Type))
	if d.closed {
		d.metrics.IncDropped(string(event.Type))
		d.logg.Warn(logCtx, "notification dispatcher closed; event dropped")
		return false
	}

	select {
	case d.queue <- task{event: event, enqueuedAt: time.Now()}:
		d.metrics.SetQueueDepth(len(d.queue))
		return true
	default:
		d.metrics.IncDropped(string(event.Type))
		d.logg.Warn(logCtx, "notification queue full; event dropped")
		return false
	}
}

// Close stops accepting events and waits for queued ones to finish or for ctx
// to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification dispatcher drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	defer d.wg.Done()
	for t := range d.queue {
		d.metrics.SetQueueDepth(len(d.queue))
		d.handle(ctx, t)
	}
}

func (d *Dispatcher) handle(ctx context.Context, t task) {
	typ := string(t.event.Type)
	logCtx := d.logg.WithFields(ctx, map[string]any{
		"notification_type": typ,
		"queue_wait_ms":     time.Since(t.enqueuedAt).Milliseconds(),
	})

	defer func() {
		if r := recover(); r != nil {
			d.metrics.ObserveTask(typ, metrics.OutcomeFailure)
			d.logg.Error(logCtx, "notification dispatch panicked", pkgerrors.New(pkgerrors.CodeDispatch, fmt.Sprint(r)))
		}
	}()

	taskCtx, cancel := context.WithTimeout(logCtx, d.taskTimeout)
	defer cancel()

	count, err := d.notifier.NotifyAllAdmins(taskCtx, t.event)
	if err != nil {
		d.metrics.ObserveTask(typ, metrics.OutcomeFailure)
		d.logg.Error(logCtx, "notification dispatch failed", pkgerrors.Wrap(pkgerrors.CodeDispatch, err, "notify all admins"))
		return
	}
	d.metrics.ObserveTask(typ, metrics.OutcomeSuccess)
	d.logg.Info(d.logg.WithField(logCtx, "recipients", count), "notification dispatched")
}
