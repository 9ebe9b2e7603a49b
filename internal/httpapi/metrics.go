package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// requestLabels are shared by the request counter and histogram.
var requestLabels = []string{"path", "method", "status"}

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guildcore",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Admin API requests by route pattern, method and status",
	}, requestLabels)

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "guildcore",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Admin API request latency",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
	}, requestLabels)

	httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "guildcore",
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Admin API requests being served",
	})

	rejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guildcore",
		Subsystem: "http",
		Name:      "rejected_total",
		Help:      "Admin API requests rejected by validation, by reason",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInflight, rejectedTotal)
}

// MetricsMiddleware counts and times requests. The path label is the chi
// route pattern, read after the handler ran so routing has filled it in.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInflight.Inc()
		defer httpInflight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{"path": routeLabel(r), "method": r.Method, "status": strconv.Itoa(status)}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}

// routeLabel keeps label cardinality bounded: unmatched requests share one
// label instead of carrying their raw path.
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func incRejected(reason string) {
	rejectedTotal.WithLabelValues(reason).Inc()
}
