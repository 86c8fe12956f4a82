// Package metrics 註冊警報服務的 Prometheus 指標。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeNoChannel = "no_channel"
)

var (
	AlertsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "alerts_received_total", Help: "Signals received for delivery"},
		[]string{"tier"},
	)
	AlertsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "alerts_dispatched_total", Help: "Dispatch attempts by outcome"},
		[]string{"platform", "outcome"},
	)
	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alert_dispatch_duration_seconds",
			Help:    "Latency of the messaging platform call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"platform"},
	)
	Confidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "alert_confidence",
		Help:    "Confidence score of rendered alerts",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)

func init() {
	prometheus.MustRegister(AlertsReceived, AlertsDispatched, DispatchDuration, Confidence)
}

func ObserveReceived(tier string) {
	AlertsReceived.WithLabelValues(tier).Inc()
}

func ObserveDispatch(platform, outcome string, took time.Duration) {
	AlertsDispatched.WithLabelValues(platform, outcome).Inc()
	if outcome != OutcomeNoChannel {
		DispatchDuration.WithLabelValues(platform).Observe(took.Seconds())
	}
}

func ObserveConfidence(score int) {
	Confidence.Observe(float64(score))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
