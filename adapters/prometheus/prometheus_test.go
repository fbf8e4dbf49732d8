package prometheus

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dylandreimerink/perfmon"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	m.ResultRecorded("cycles", 500, false)
	m.ResultRecorded("instructions", 1200, false)
	m.CycleCompleted()

	m.ResultRecorded("cycles", 300, false)
	m.ResultRecorded("instructions", perfmon.UndefinedValue, true)
	m.CycleCompleted()

	pm := m.(*metrics)
	assert.Equal(t, float64(800), testutil.ToFloat64(pm.results.WithLabelValues("cycles")))
	assert.Equal(t, float64(1200), testutil.ToFloat64(pm.results.WithLabelValues("instructions")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.undefinedResults.WithLabelValues("instructions")))
	assert.Equal(t, float64(300), testutil.ToFloat64(pm.lastDelta.WithLabelValues("cycles")))
	assert.True(t, math.IsNaN(testutil.ToFloat64(pm.lastDelta.WithLabelValues("instructions"))))
	assert.Equal(t, float64(2), testutil.ToFloat64(pm.cycles))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	// 2 results, 1 undefined, 2 last deltas, 1 cycles
	assert.Equal(t, 6, count)
}

func TestNegativeDelta(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewMetrics(reg).(*metrics)

	pm.ResultRecorded("cycles", ^uint64(0), false)
	assert.Equal(t, float64(-1), testutil.ToFloat64(pm.lastDelta.WithLabelValues("cycles")))
	assert.Equal(t, float64(0), testutil.ToFloat64(pm.results.WithLabelValues("cycles")))
}

func TestDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}
