package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricNamespace = "healthrisk"

	metricsNameRequestLatency      = "prediction_request_latency"
	metricsNameRiskLevels          = "risk_assessments_total"
	metricsNameEnrichmentFallbacks = "enrichment_fallbacks_total"

	metricLabelEndpoint = "endpoint"
	metricLabelDisease  = "disease"
	metricLabelLevel    = "level"
	metricLabelStage    = "stage"
)

// MetricsMonitoring is an interface for monitoring metrics.
type MetricsMonitoring interface {
	ObserveRequestLatency(endpoint string, latency time.Duration)
	ObserveRiskLevel(disease, level string)
	ObserveEnrichmentFallback(stage string)
}

// MetricsMonitor holds and updates Prometheus metrics.
type MetricsMonitor struct {
	registerer prometheus.Registerer

	requestLatencyHistVec *prometheus.HistogramVec
	riskLevelCounterVec   *prometheus.CounterVec
	fallbackCounterVec    *prometheus.CounterVec
}

// latencyBuckets are the buckets for the latencies from 10ms to 30 seconds.
var latencyBuckets = []float64{
	.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30,
}

// NewMetricsMonitor returns a new MetricsMonitor registered with reg.
func NewMetricsMonitor(reg prometheus.Registerer) *MetricsMonitor {
	m := &MetricsMonitor{
		registerer: reg,
		requestLatencyHistVec: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricNamespace,
				Name:      metricsNameRequestLatency,
				Help:      "Latency of prediction requests in seconds.",
				Buckets:   latencyBuckets,
			},
			[]string{metricLabelEndpoint},
		),
		riskLevelCounterVec: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      metricsNameRiskLevels,
				Help:      "Risk assessments produced, by disease and level.",
			},
			[]string{metricLabelDisease, metricLabelLevel},
		),
		fallbackCounterVec: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      metricsNameEnrichmentFallbacks,
				Help:      "Upstream lookups that failed and fell back to baseline values.",
			},
			[]string{metricLabelStage},
		),
	}

	reg.MustRegister(
		m.requestLatencyHistVec,
		m.riskLevelCounterVec,
		m.fallbackCounterVec,
	)

	return m
}

// ObserveRequestLatency observes a new latency data for a prediction request.
func (m *MetricsMonitor) ObserveRequestLatency(endpoint string, latency time.Duration) {
	m.requestLatencyHistVec.WithLabelValues(endpoint).Observe(float64(latency) / float64(time.Second))
}

// ObserveRiskLevel counts one assessment.
func (m *MetricsMonitor) ObserveRiskLevel(disease, level string) {
	m.riskLevelCounterVec.WithLabelValues(disease, level).Inc()
}

// ObserveEnrichmentFallback counts one upstream failure.
func (m *MetricsMonitor) ObserveEnrichmentFallback(stage string) {
	m.fallbackCounterVec.WithLabelValues(stage).Inc()
}

// UnregisterAllCollectors unregisters all collectors.
func (m *MetricsMonitor) UnregisterAllCollectors() {
	m.registerer.Unregister(m.requestLatencyHistVec)
	m.registerer.Unregister(m.riskLevelCounterVec)
	m.registerer.Unregister(m.fallbackCounterVec)
}

// NoopMonitor discards all observations.
type NoopMonitor struct{}

func (NoopMonitor) ObserveRequestLatency(string, time.Duration) {}
func (NoopMonitor) ObserveRiskLevel(string, string) {}
func (NoopMonitor) ObserveEnrichmentFallback(string) {}
