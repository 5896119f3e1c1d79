package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		deliveriesTotal,
		updateLatencyMs,
	)
}

var (
	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_deliveries_total",
			Help: "Outbound logical messages by mode (reveal/chunked/fallback/error_notice).",
		},
		[]string{"mode"},
	)

	updateLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_handle_latency_ms",
			Help:    "Inbound update handling latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"kind"},
	)
)

func IncDelivery(mode string) {
	deliveriesTotal.WithLabelValues(norm(mode)).Inc()
}

func ObserveUpdateLatency(kind string, ms float64) {
	updateLatencyMs.WithLabelValues(norm(kind)).Observe(ms)
}
