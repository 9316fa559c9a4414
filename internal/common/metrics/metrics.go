// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total number of application submissions by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_submission_duration_seconds",
			Help:    "Duration of submission processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	DocumentOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_document_operations_total",
			Help: "Document store operations by kind and result",
		},
		[]string{"operation", "result"},
	)

	CompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_compensations_total",
			Help: "Undo actions run after a failed submission step",
		},
		[]string{"result"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_notifications_total",
			Help: "Notification emails by recipient and result",
		},
		[]string{"recipient", "result"},
	)

	IndexOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_index_operations_total",
			Help: "Search index writes by result",
		},
		[]string{"result"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)
)

// Result labels a success or failure.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
