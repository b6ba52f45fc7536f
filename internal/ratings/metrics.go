// internal/ratings/metrics.go

package ratings

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ratingsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_submitted_total",
			Help: "Total number of circle ratings submitted",
		},
		[]string{"circle"},
	)

	attractionSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_attraction_submitted_total",
			Help: "Total number of attraction ratings submitted",
		},
		[]string{"placement"},
	)

	privacyGateHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_privacy_gate_hits_total",
			Help: "Circle score views hidden by the anonymity floor",
		},
	)

	submittedScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ratings_submitted_scores",
			Help:    "Distribution of submitted trait scores",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)
)

func recordRating(circle string, scores Scores) {
	ratingsSubmitted.WithLabelValues(circle).Inc()
	for _, score := range scores {
		submittedScores.Observe(float64(score))
	}
}

func recordAttractionRating(outOfCircles bool) {
	placement := "in_circles"
	if outOfCircles {
		placement = "out_of_circles"
	}
	attractionSubmitted.WithLabelValues(placement).Inc()
}

func recordPrivacyGateHit() {
	privacyGateHits.Inc()
}
