package registry

import "github.com/prometheus/client_golang/prometheus"

var lifecycleTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "guildcore",
		Subsystem: "registry",
		Name:      "lifecycle_total",
		Help:      "Service lifecycle transitions, by operation and result",
	},
	[]string{"op", "result"},
)

func init() {
	prometheus.MustRegister(lifecycleTotal)
}
