package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	commitOutcome = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "junglebook",
			Name:      "reservation_commit_total",
			Help:      "Count of reservation commit attempts by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "junglebook",
			Name:      "http_requests_total",
			Help:      "Count of handled HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(commitOutcome, httpRequests)
	})
}

func IncCommit(outcome string) {
	commitOutcome.WithLabelValues(outcome).Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
