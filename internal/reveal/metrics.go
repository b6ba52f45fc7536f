// internal/reveal/metrics.go

package reveal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	revealRequestsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reveal_requests_sent_total",
			Help: "Total number of reveal requests sent",
		},
	)

	revealRequestsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reveal_requests_resolved_total",
			Help: "Total number of reveal requests resolved",
		},
		[]string{"status"},
	)
)

func recordRevealRequest() {
	revealRequestsSent.Inc()
}

func recordRevealResolution(status string) {
	revealRequestsResolved.WithLabelValues(status).Inc()
}
