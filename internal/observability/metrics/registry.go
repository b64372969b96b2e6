package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Summary status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// SummariesTotal counts summarize operations by status.
	SummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_summaries_total",
			Help: "Total number of review summarization requests",
		},
		[]string{"status"},
	)

	// SummarizeDuration measures end-to-end summarization time, all upstream calls included.
	SummarizeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "review_summarize_duration_seconds",
			Help:    "Time taken to summarize a batch of reviews",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"status"},
	)

	// ReviewsPerRequest tracks how many normalized review texts a request carried.
	ReviewsPerRequest = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "review_texts_per_request",
			Help:    "Number of normalized review texts per summarize request",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 250, 500, 1000},
		},
	)

	// ChunksPerRequest tracks how many partial summaries a request needed.
	ChunksPerRequest = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "review_chunks_per_request",
			Help:    "Number of chunks (partial summaries) per summarize request",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34},
		},
	)

	// SummariesInFlight tracks summarize operations currently waiting on the upstream.
	SummariesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "review_summaries_in_flight",
			Help: "Current number of summarize operations in progress",
		},
	)
)

// RecordSummary records the outcome of a summarize operation.
// parts is only observed for successful operations.
func RecordSummary(success bool, reviews, parts int, duration time.Duration) {
	status := StatusSuccess
	if !success {
		status = StatusFailure
	}
	SummariesTotal.WithLabelValues(status).Inc()
	SummarizeDuration.WithLabelValues(status).Observe(duration.Seconds())
	ReviewsPerRequest.Observe(float64(reviews))
	if success {
		ChunksPerRequest.Observe(float64(parts))
	}
}

// TrackInFlight increments the in-flight gauge and returns the matching decrement.
func TrackInFlight() func() {
	SummariesInFlight.Inc()
	return SummariesInFlight.Dec
}
