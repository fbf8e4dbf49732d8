//go:build perftests

package integration

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/dylandreimerink/perfmon"
	"github.com/dylandreimerink/perfmon/events"
	"github.com/dylandreimerink/perfmon/kernelsupport"
	"github.com/dylandreimerink/perfmon/perf"
)

//go:noinline
func randomSlice(size int) []int64 {
	s := make([]int64, size)
	for i := range s {
		s[i] = rand.Int63()
	}
	return s
}

func newSession(t *testing.T, names ...string) *perfmon.Session {
	t.Helper()

	cfg := perfmon.DefaultConfig()
	cfg.Events = names
	s := perfmon.NewSession(cfg)
	t.Cleanup(func() { s.Close() })

	return s
}

// skipUnavailable skips the test if the host has no PMU for the requested events, which is common in VMs.
func skipUnavailable(t *testing.T, err error) {
	t.Helper()

	if errors.Is(err, perfmon.ErrOpen) &&
		(errors.Is(err, unix.ENOENT) || errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENODEV)) {
		t.Skipf("events not available: %s", err)
	}
}

func TestIntegrationKernelSupport(t *testing.T) {
	features, err := kernelsupport.CurrentFeatures()
	require.NoError(t, err)
	require.True(t, features.Perf.Has(kernelsupport.KFeatPerfEventOpen),
		"kernel %s reports no perf_event_open support", features.Release)

	level, err := kernelsupport.ParanoidLevel()
	require.NoError(t, err)
	t.Logf("perf_event_paranoid = %d", level)
}

func TestIntegrationSoftwareEvents(t *testing.T) {
	s := newSession(t, "task-clock", "page-faults", "PERF_COUNT_SW_CONTEXT_SWITCHES")
	require.NoError(t, s.Prepare())

	for cycle := 1; cycle <= 3; cycle++ {
		require.NoError(t, s.Begin())

		// Touch fresh memory so the page fault counter moves
		buf := make([]byte, 16<<20)
		for i := 0; i < len(buf); i += 4096 {
			buf[i] = 1
		}

		results, err := s.End()
		require.NoError(t, err)
		require.Len(t, results, cycle*3)

		last := results[len(results)-3:]
		require.Equal(t, "task-clock", last[0].Name)
		require.False(t, last[0].Undefined())
		require.NotZero(t, last[0].Value)
		require.False(t, last[1].Undefined())
		require.NotZero(t, last[1].Value, "page-faults")
	}
}

// endShared skips the test when the PMU is shared with other users.
func endShared(t *testing.T, s *perfmon.Session) []perfmon.Result {
	t.Helper()

	results, err := s.End()
	if errors.Is(err, perfmon.ErrContention) {
		t.Skipf("PMU is shared: %s", err)
	}
	require.NoError(t, err)

	return results
}

func TestIntegrationTLBMiss(t *testing.T) {
	s := newSession(t, "PERF_COUNT_HW_CACHE_DTLB:MISS", "PERF_COUNT_HW_CACHE_ITLB:MISS")
	err := s.Prepare()
	skipUnavailable(t, err)
	require.NoError(t, err)

	require.NoError(t, s.Begin())

	v := randomSlice(1 << 19)
	slices.Sort(v)
	require.True(t, slices.IsSorted(v))

	for _, res := range endShared(t, s) {
		t.Logf("%s = %d", res.Name, res.Value)
		require.False(t, res.Undefined(), res.Name)
		require.NotZero(t, res.Value, res.Name)
	}
}

func TestIntegrationCyclesInstructions(t *testing.T) {
	s := newSession(t, "cycles", "instructions")
	err := s.Prepare()
	skipUnavailable(t, err)
	require.NoError(t, err)

	require.NoError(t, s.Begin())

	var sum int
	for i := 0; i < 1000000; i++ {
		sum += i
	}
	require.Equal(t, 499999500000, sum)

	results := endShared(t, s)
	require.GreaterOrEqual(t, results[1].Value, uint64(1000000), "at least one instruction per iteration")
}

func TestIntegrationTracepoint(t *testing.T) {
	if !perf.HasTracepointCategory(perf.TraceFS(), "syscalls") {
		t.Skip("tracefs or syscall tracepoints not available")
	}

	s := newSession(t, "syscalls:sys_enter_getpid")
	require.NoError(t, s.Prepare())

	require.NoError(t, s.Begin())
	for i := 0; i < 100; i++ {
		unix.Getpid()
	}
	results, err := s.End()
	require.NoError(t, err)
	require.GreaterOrEqual(t, results[0].Value, uint64(100))
}

func TestIntegrationRawEvent(t *testing.T) {
	enc := events.NewEncoder()
	require.NoError(t, enc.Initialize())

	var attr perf.Attr
	require.NoError(t, enc.Encode("cpu-clock", events.PLM3, &attr))
	attr.ReadFormat = perf.ReadFormatTotalTimeEnabled | perf.ReadFormatTotalTimeRunning

	event, err := perf.Open(&attr, perf.CallingProcess, perf.AnyCPU, perf.NoGroup, perf.OpenFDCloseOnExec)
	require.NoError(t, err)
	defer event.Close()

	require.NoError(t, event.Enable())
	require.NoError(t, event.Reset())

	count, err := event.ReadCount()
	require.NoError(t, err)
	require.NotZero(t, count.TimeEnabled, "counter not enabled")

	require.NoError(t, event.Disable())
}
