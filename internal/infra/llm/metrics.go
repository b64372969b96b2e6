package llm

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Attempt outcomes recorded by UpstreamMetricsRecorder.
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeEmpty       = "empty"
	OutcomeUnavailable = "circuit_open"
)

// UpstreamMetricsRecorder records per-attempt upstream metrics.
// Tests inject a fake; production uses Prometheus.
type UpstreamMetricsRecorder interface {
	// RecordAttempt records one model attempt and how long it took.
	RecordAttempt(provider, model, outcome string, duration time.Duration)

	// RecordExhausted increments when every fallback model failed.
	RecordExhausted(provider string)

	// RecordBreakerState reports whether the model's circuit is open.
	RecordBreakerState(provider, model string, open bool)
}

// PrometheusUpstreamMetrics implements UpstreamMetricsRecorder using Prometheus metrics.
type PrometheusUpstreamMetrics struct {
	attempts  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	exhausted *prometheus.CounterVec
	breaker   *prometheus.GaugeVec
}

var (
	prometheusMetricsInstance *PrometheusUpstreamMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateCounterVec gets an existing counter vec or creates a new one if it doesn't exist
func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// getOrCreateHistogramVec gets an existing histogram vec or creates a new one if it doesn't exist
func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		return promauto.NewHistogramVec(opts, labels)
	}
	return h
}

// getOrCreateGaugeVec gets an existing gauge vec or creates a new one if it doesn't exist
func getOrCreateGaugeVec(opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(opts, labels)
	if err := prometheus.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.GaugeVec)
		}
		return promauto.NewGaugeVec(opts, labels)
	}
	return g
}

// NewPrometheusUpstreamMetrics returns the process-wide Prometheus recorder.
// Uses singleton pattern to avoid duplicate metric registration in tests.
func NewPrometheusUpstreamMetrics() *PrometheusUpstreamMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusUpstreamMetrics{
			attempts: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "llm_upstream_attempts_total",
				Help: "Upstream completion attempts by provider, model and outcome",
			}, []string{"provider", "model", "outcome"}),
			duration: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "llm_upstream_attempt_duration_seconds",
				Help:    "Time taken by one upstream completion attempt",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, []string{"provider", "model"}),
			exhausted: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "llm_upstream_fallback_exhausted_total",
				Help: "Completions that failed on every configured model",
			}, []string{"provider"}),
			breaker: getOrCreateGaugeVec(prometheus.GaugeOpts{
				Name: "llm_circuit_breaker_open",
				Help: "1 while the model's circuit breaker is open, 0 otherwise",
			}, []string{"provider", "model"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordAttempt implements UpstreamMetricsRecorder.RecordAttempt
func (p *PrometheusUpstreamMetrics) RecordAttempt(provider, model, outcome string, duration time.Duration) {
	p.attempts.WithLabelValues(provider, model, outcome).Inc()
	p.duration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordExhausted implements UpstreamMetricsRecorder.RecordExhausted
func (p *PrometheusUpstreamMetrics) RecordExhausted(provider string) {
	p.exhausted.WithLabelValues(provider).Inc()
}

// RecordBreakerState implements UpstreamMetricsRecorder.RecordBreakerState
func (p *PrometheusUpstreamMetrics) RecordBreakerState(provider, model string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	p.breaker.WithLabelValues(provider, model).Set(v)
}
