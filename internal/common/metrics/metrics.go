// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StageTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_transitions_total",
			Help: "Total number of successful stage transitions",
		},
		[]string{"from_stage", "to_stage"},
	)

	ActivitiesLoggedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_activities_logged_total",
			Help: "Total number of activities appended to the audit log",
		},
		[]string{"activity_type"},
	)

	TimelineReconstructionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_timeline_reconstructions_total",
			Help: "Total number of timeline reconstructions",
		},
	)

	// Classification counters audit how often the reconstructor had to infer
	// a stage or sub-stage instead of reading an explicit one.
	TimelineClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_timeline_classifications_total",
			Help: "Stage/sub-stage classifications by field and source",
		},
		[]string{"field", "source"},
	)

	TimelineLoadMoreTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_timeline_load_more_total",
			Help: "Load-more requests by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	TimelineCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_timeline_cache_total",
			Help: "Timeline snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	MetadataValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_activity_metadata_validation_failures_total",
			Help: "Activity metadata payloads that failed schema validation",
		},
		[]string{"activity_type"},
	)
)
