// Package prometheus exports the results of a perfmon.Session as Prometheus metrics.
package prometheus

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dylandreimerink/perfmon"
)

// metrics implements perfmon.Metrics using Prometheus.
type metrics struct {
	results          *prometheus.CounterVec
	undefinedResults *prometheus.CounterVec
	lastDelta        *prometheus.GaugeVec
	cycles           prometheus.Counter
}

// NewMetrics creates the Prometheus metrics and registers them with reg. Pass the result to perfmon.WithMetrics.
func NewMetrics(reg prometheus.Registerer) perfmon.Metrics {
	m := &metrics{
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perfmon_results_total",
			Help: "Sum of all defined deltas per event",
		}, []string{"event"}),

		undefinedResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perfmon_undefined_results_total",
			Help: "Number of intervals in which the delta of an event was undefined due to overflow or contention",
		}, []string{"event"}),

		lastDelta: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "perfmon_last_delta",
			Help: "Delta of the most recent interval per event, NaN if undefined",
		}, []string{"event"}),

		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perfmon_cycles_total",
			Help: "Number of completed begin/end intervals",
		}),
	}

	reg.MustRegister(
		m.results,
		m.undefinedResults,
		m.lastDelta,
		m.cycles,
	)

	return m
}

func (m *metrics) ResultRecorded(event string, value uint64, undefined bool) {
	if undefined {
		m.undefinedResults.WithLabelValues(event).Inc()
		m.lastDelta.WithLabelValues(event).Set(math.NaN())
		return
	}

	// Counters can't decrease, a negative delta reinterpreted as unsigned is only visible in the gauge
	if int64(value) >= 0 {
		m.results.WithLabelValues(event).Add(float64(value))
	}
	m.lastDelta.WithLabelValues(event).Set(float64(int64(value)))
}

func (m *metrics) CycleCompleted() {
	m.cycles.Inc()
}
