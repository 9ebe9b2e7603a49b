package scheduler

import "github.com/prometheus/client_golang/prometheus"

var (
	tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guildcore",
			Subsystem: "scheduler",
			Name:      "tasks_total",
			Help:      "Tasks submitted to the scheduler",
		},
		[]string{"scope_kind", "mode"},
	)

	taskPanics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guildcore",
			Subsystem: "scheduler",
			Name:      "task_panics_total",
			Help:      "Scheduled tasks that panicked",
		},
		[]string{"scope_kind"},
	)

	inlineTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "guildcore",
			Subsystem: "scheduler",
			Name:      "inline_total",
			Help:      "Tasks executed synchronously because the scheduler was not running",
		},
	)

	activeLoops = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "guildcore",
			Subsystem: "scheduler",
			Name:      "active_loops",
			Help:      "Scopes with a goroutine draining their queue",
		},
	)
)

func init() {
	prometheus.MustRegister(tasksTotal, taskPanics, inlineTotal, activeLoops)
}
