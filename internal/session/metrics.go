package session

import "github.com/prometheus/client_golang/prometheus"

var (
	openPanels = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "guildcore",
		Subsystem: "session",
		Name:      "open_panels",
		Help:      "Number of users with an open panel.",
	})
	interactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guildcore",
		Subsystem: "session",
		Name:      "interactions_total",
		Help:      "Raw interactions by outcome: delivered, debounced, stale, failed, ignored.",
	}, []string{"result"})
	inputTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guildcore",
		Subsystem: "session",
		Name:      "input_total",
		Help:      "Text lines offered to input handlers by outcome: completed, pending, failed, none.",
	}, []string{"result"})
	failuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guildcore",
		Subsystem: "session",
		Name:      "failures_total",
		Help:      "Contained panel and input handler failures by stage.",
	}, []string{"stage"})
)

func init() {
	prometheus.MustRegister(openPanels, interactionsTotal, inputTotal, failuresTotal)
}
