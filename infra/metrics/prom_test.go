package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/rideslots/core/metrics"
)

func TestPromSink_RecordQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, s.RecordQuery(coremetrics.QueryEvent{Route: "/frame/{ts}", Status: 200, Latency: 20 * time.Millisecond}))
	require.NoError(t, s.RecordQuery(coremetrics.QueryEvent{Route: "/frame/{ts}", Status: 404, Latency: time.Millisecond}))
	require.NoError(t, s.RecordQuery(coremetrics.QueryEvent{Route: "/frame/{ts}", Status: 200, Latency: time.Millisecond}))

	assert.Equal(t, 2.0, testutil.ToFloat64(s.queries.WithLabelValues("/frame/{ts}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.queries.WithLabelValues("/frame/{ts}", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(s.latency))
}

func TestPromSink_RecordDataset(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, s.RecordDataset(coremetrics.DatasetEvent{Rows: 8, Slots: 3, Timestamps: 3, Vehicles: 3}))

	assert.Equal(t, 8.0, testutil.ToFloat64(s.rows))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.slots))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.timestamps))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.vehicles))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, second.RecordQuery(coremetrics.QueryEvent{Route: "/summary", Status: 200}))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.queries.WithLabelValues("/summary", "200")))
	assert.Same(t, first.queries, second.queries)
}
