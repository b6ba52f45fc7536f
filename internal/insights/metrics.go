// internal/insights/metrics.go

package insights

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var summariesGenerated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "insights_summaries_total",
		Help: "Trait summaries served, by context and source",
	},
	[]string{"context", "source"},
)

func recordSummary(contextName, source string) {
	summariesGenerated.WithLabelValues(contextName, source).Inc()
}
