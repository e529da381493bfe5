package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"log-query-translator/internal/prompt"
)

var (
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nlq_stage_duration_seconds",
			Help:    "Duration of each model stage in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlq_stage_failures_total",
			Help: "Total number of failed model stages",
		},
		[]string{"stage"},
	)

	ExtractionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlq_extraction_fallbacks_total",
			Help: "Total number of times a pipeline fell back because no query could be extracted",
		},
		[]string{"pipeline"},
	)

	Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlq_requests_total",
			Help: "Total number of handled requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	DSLShapeViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nlq_dsl_shape_violations_total",
			Help: "Total number of returned queries that did not match the expected search request shape",
		},
	)

	CatalogFields = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nlq_catalog_fields",
			Help: "Number of fields in the discovered field catalog",
		},
	)
)

// PipelineObserver feeds pipeline events into the collectors above.
type PipelineObserver struct{}

func (PipelineObserver) StageFinished(stage prompt.Stage, elapsed time.Duration, err error) {
	StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
	if err != nil {
		StageFailures.WithLabelValues(string(stage)).Inc()
	}
}

func (PipelineObserver) ExtractionFallback(pipeline string) {
	ExtractionFallbacks.WithLabelValues(pipeline).Inc()
}

func RecordRequest(endpoint, outcome string) {
	Requests.WithLabelValues(endpoint, outcome).Inc()
}
