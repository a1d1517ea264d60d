package obs

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every Prometheus collector the worker registers, grounded on
// the reference org's metrics2-over-client_golang counters/gauges for its
// own polling daemon (tick counts, state-transition counts, liveness
// gauges), narrowed to this worker's own tick/task/heartbeat/upload surface.
type Metrics struct {
	Ticks             prometheus.Counter
	TaskTransitions   *prometheus.CounterVec
	Heartbeats        prometheus.Counter
	UploadRetries     prometheus.Counter
	InFlightTasks     prometheus.Gauge
	OptimizeFailures  prometheus.Counter
	ReclamationEvents prometheus.Counter
}

// NewMetrics constructs and registers the worker's metrics against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worker_ticks_total",
			Help: "Total number of engine update-cycle ticks run.",
		}),
		TaskTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_task_transitions_total",
			Help: "Task status transitions, labeled by from/to status.",
		}, []string{"from", "to"}),
		Heartbeats: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worker_heartbeats_total",
			Help: "Total number of heart.<id> events published.",
		}),
		UploadRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worker_upload_retries_total",
			Help: "Total number of upload attempts that registered a backoff failure.",
		}),
		InFlightTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "worker_in_flight_tasks",
			Help: "Current number of non-terminal Tasks held by the engine.",
		}),
		OptimizeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worker_optimize_failures_total",
			Help: "Total number of scene-optimization attempts that failed.",
		}),
		ReclamationEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worker_scene_reclamations_total",
			Help: "Total number of scenes reclaimed (deleted) after grace period.",
		}),
	}
	reg.MustRegister(
		m.Ticks,
		m.TaskTransitions,
		m.Heartbeats,
		m.UploadRetries,
		m.InFlightTasks,
		m.OptimizeFailures,
		m.ReclamationEvents,
	)
	return m
}
