// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_assessments_computed_total",
			Help: "Total number of risk assessments computed, by resulting level",
		},
		[]string{"risk_level"},
	)

	AssessmentsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_assessments_failed_total",
			Help: "Total number of assessment requests rejected, by error code",
		},
		[]string{"error_code"},
	)

	AssessmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "risk_assessment_duration_seconds",
			Help: "Duration of single-student assessment in seconds",
		},
		[]string{"trigger"},
	)

	PredictionsByMethod = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropout_predictions_total",
			Help: "Total dropout predictions served, by method (model or rule-based)",
		},
		[]string{"method"},
	)

	ModelFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dropout_model_fallbacks_total",
			Help: "Times inference fell back to the rule-based estimate",
		},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropout_model_training_runs_total",
			Help: "Training runs attempted, by outcome",
		},
		[]string{"status"},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dropout_model_training_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)
