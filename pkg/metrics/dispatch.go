package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// DispatchMetrics tracks the notification fan-out queue and push channel.
type DispatchMetrics struct {
	tasks   *prometheus.CounterVec
	dropped *prometheus.CounterVec
	rows    *prometheus.CounterVec
	pushes  *prometheus.CounterVec
	depth   prometheus.Gauge
}

// NewDispatchMetrics registers the dispatcher metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	tasks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "andalib_notification_dispatch_total",
		Help: "Notification dispatch tasks processed, by type and outcome.",
	}, []string{"type", "outcome"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "andalib_notification_dispatch_dropped_total",
		Help: "Dispatch tasks dropped because the queue was full or closed.",
	}, []string{"type"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "andalib_notification_rows_created_total",
		Help: "Per-admin notification rows created by fan-out.",
	}, []string{"type"})
	pushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "andalib_notification_push_total",
		Help: "Push attempts to the messaging topic, by outcome.",
	}, []string{"outcome"})
	depth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "andalib_notification_queue_depth",
		Help: "Dispatch tasks waiting in the queue.",
	})
	reg.MustRegister(tasks, dropped, rows, pushes, depth)
	return &DispatchMetrics{
		tasks:   tasks,
		dropped: dropped,
		rows:    rows,
		pushes:  pushes,
		depth:   depth,
	}
}

// ObserveTask records the outcome of one dispatch task.
func (d *DispatchMetrics) ObserveTask(notificationType, outcome string) {
	if d == nil || d.tasks == nil {
		return
	}
	d.tasks.WithLabelValues(normalizeLabel(notificationType), outcome).Inc()
}

// IncDropped counts a task that never reached a worker.
func (d *DispatchMetrics) IncDropped(notificationType string) {
	if d == nil || d.dropped == nil {
		return
	}
	d.dropped.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

// AddRows adds fanned-out notification rows.
func (d *DispatchMetrics) AddRows(notificationType string, rows int) {
	if d == nil || d.rows == nil || rows <= 0 {
		return
	}
	d.rows.WithLabelValues(normalizeLabel(notificationType)).Add(float64(rows))
}

// ObservePush records one push attempt.
func (d *DispatchMetrics) ObservePush(outcome string) {
	if d == nil || d.pushes == nil {
		return
	}
	d.pushes.WithLabelValues(outcome).Inc()
}

// SetQueueDepth reports the current queue length.
func (d *DispatchMetrics) SetQueueDepth(n int) {
	if d == nil || d.depth == nil {
		return
	}
	d.depth.Set(float64(n))
}
