package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		fulfillmentsTotal,
		generatorLatencySec,
	)
}

var (
	fulfillmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillments_total",
			Help: "Fulfillment pipeline runs by outcome (delivered/generation_error/artifact_missing/delivery_error).",
		},
		[]string{"outcome"},
	)

	generatorLatencySec = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "credential_generator_seconds",
			Help:    "Wall time of external credential generator invocations.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)
)

func IncFulfillment(outcome string) {
	fulfillmentsTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveGeneratorSeconds(s float64) {
	generatorLatencySec.Observe(s)
}
