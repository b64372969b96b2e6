package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func histogramCount(t *testing.T, h interface{ Write(*dto.Metric) error }) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, h.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestRecordSummary_Success(t *testing.T) {
	beforeOK := testutil.ToFloat64(SummariesTotal.WithLabelValues(StatusSuccess))
	beforeChunks := histogramCount(t, ChunksPerRequest)
	beforeReviews := histogramCount(t, ReviewsPerRequest)

	RecordSummary(true, 45, 2, 1500*time.Millisecond)

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(SummariesTotal.WithLabelValues(StatusSuccess)))
	assert.Equal(t, beforeChunks+1, histogramCount(t, ChunksPerRequest))
	assert.Equal(t, beforeReviews+1, histogramCount(t, ReviewsPerRequest))
}

func TestRecordSummary_FailureSkipsChunks(t *testing.T) {
	beforeFail := testutil.ToFloat64(SummariesTotal.WithLabelValues(StatusFailure))
	beforeChunks := histogramCount(t, ChunksPerRequest)

	RecordSummary(false, 3, 0, 200*time.Millisecond)

	assert.Equal(t, beforeFail+1, testutil.ToFloat64(SummariesTotal.WithLabelValues(StatusFailure)))
	assert.Equal(t, beforeChunks, histogramCount(t, ChunksPerRequest))
}

func TestTrackInFlight(t *testing.T) {
	before := testutil.ToFloat64(SummariesInFlight)

	done := TrackInFlight()
	assert.Equal(t, before+1, testutil.ToFloat64(SummariesInFlight))

	done()
	assert.Equal(t, before, testutil.ToFloat64(SummariesInFlight))
}
