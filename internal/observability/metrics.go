package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Workflow outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected" // failed before any write
	OutcomeFailed   = "failed"   // failed during the write phase, rolled back
	OutcomePartial  = "partial"  // failed during the write phase, not rolled back
)

var (
	workflowTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness_tracker",
		Name:      "workflow_total",
		Help:      "Workflow invocations by workflow and outcome.",
	}, []string{"workflow", "outcome"})
	workflowDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitness_tracker",
		Name:      "workflow_duration_seconds",
		Help:      "Workflow latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"workflow"})
	resyncTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness_tracker",
		Name:      "aggregate_resync_total",
		Help:      "Aggregate recomputations by aggregate and whether a write was needed.",
	}, []string{"aggregate", "result"})
)

func init() {
	prometheus.MustRegister(workflowTotal, workflowDuration, resyncTotal)
}

// RecordWorkflow counts one workflow invocation.
func RecordWorkflow(workflow, outcome string, took time.Duration) {
	workflowTotal.WithLabelValues(workflow, outcome).Inc()
	workflowDuration.WithLabelValues(workflow).Observe(took.Seconds())
}

// RecordResync counts one aggregate recomputation.
func RecordResync(aggregate string, written bool) {
	result := "unchanged"
	if written {
		result = "written"
	}
	resyncTotal.WithLabelValues(aggregate, result).Inc()
}
