package eventbus

import "github.com/prometheus/client_golang/prometheus"

var (
	publishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guildcore",
			Subsystem: "eventbus",
			Name:      "published_total",
			Help:      "Events published, by event type",
		},
		[]string{"event_type"},
	)

	listenerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guildcore",
			Subsystem: "eventbus",
			Name:      "listener_failures_total",
			Help:      "Listeners that panicked while handling an event",
		},
		[]string{"event_type"},
	)
)

func init() {
	prometheus.MustRegister(publishedTotal, listenerFailures)
}
