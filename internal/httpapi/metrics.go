package httpapi

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the Prometheus collectors exported by the adapter.
type metrics struct {
	puzzlesIssued  prometheus.Counter
	verifyAttempts prometheus.Counter
	verifyOutcomes *prometheus.CounterVec
	verifyDuration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		puzzlesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fcaptcha_puzzles_issued_total",
			Help: "Total number of puzzles issued via /build-puzzle.",
		}),
		verifyAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fcaptcha_verify_attempts_total",
			Help: "Total number of /verify-puzzle-result requests.",
		}),
		verifyOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fcaptcha_verify_outcomes_total",
			Help: "Verification outcomes, labeled by result kind.",
		}, []string{"kind"}),
		verifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fcaptcha_verify_duration_seconds",
			Help:    "Time spent running the verifier state machine.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.puzzlesIssued, m.verifyAttempts, m.verifyOutcomes, m.verifyDuration)
	return m
}
