package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordWorkflow(t *testing.T) {
	before := testutil.ToFloat64(workflowTotal.WithLabelValues("complete_workout", OutcomePartial))
	RecordWorkflow("complete_workout", OutcomePartial, 20*time.Millisecond)
	after := testutil.ToFloat64(workflowTotal.WithLabelValues("complete_workout", OutcomePartial))
	assert.Equal(t, before+1, after)
}

func TestRecordResync(t *testing.T) {
	written := testutil.ToFloat64(resyncTotal.WithLabelValues("session_count", "written"))
	unchanged := testutil.ToFloat64(resyncTotal.WithLabelValues("session_count", "unchanged"))

	RecordResync("session_count", true)
	RecordResync("session_count", false)
	RecordResync("session_count", false)

	assert.Equal(t, written+1, testutil.ToFloat64(resyncTotal.WithLabelValues("session_count", "written")))
	assert.Equal(t, unchanged+2, testutil.ToFloat64(resyncTotal.WithLabelValues("session_count", "unchanged")))
}
