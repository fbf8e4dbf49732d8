package perfmon_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dylandreimerink/perfmon"
	"github.com/dylandreimerink/perfmon/events"
	"github.com/dylandreimerink/perfmon/perf"
)

func newTestSet(t *testing.T, names []string, k *fakeKernel) *perfmon.CounterSet {
	t.Helper()

	cs := perfmon.NewCounterSet(names, perfmon.WithEncoder(newFakeEncoder()), perfmon.WithKernel(k))
	require.NoError(t, cs.Initialize())
	require.NoError(t, cs.CreateAll())
	require.NoError(t, cs.Enable())
	t.Cleanup(func() { cs.Close() })

	return cs
}

func TestCounterSetCreate(t *testing.T) {
	k := newFakeKernel()
	enc := newFakeEncoder()
	cs := perfmon.NewCounterSet([]string{"cycles", "instructions", "cycles"},
		perfmon.WithEncoder(enc),
		perfmon.WithKernel(k),
		perfmon.WithPrivilegeLevel(events.PLM3),
	)
	require.NoError(t, cs.Initialize())
	require.NoError(t, cs.CreateAll())

	require.Equal(t, 3, cs.Len())
	require.Len(t, k.counters, 3)
	require.Equal(t, []events.PLM{events.PLM3, events.PLM3, events.PLM3}, enc.plms)

	for i, want := range []string{"cycles", "instructions", "cycles"} {
		desc := cs.Descriptors()[i]
		require.Equal(t, want, desc.Name)
		require.Equal(t, perf.TYPE_HARDWARE, desc.Attr.Type)
		require.Equal(t, perf.ReadFormatTotalTimeEnabled|perf.ReadFormatTotalTimeRunning, desc.Attr.ReadFormat)
		require.NotZero(t, desc.Attr.AttrFlags&perf.AttrFlagsDisabled)
		require.NotZero(t, desc.Attr.AttrFlags&perf.AttrFlagsInherit)

		require.True(t, k.counters[i].enabled)
		require.Equal(t, desc.Attr, k.counters[i].attr)
	}

	require.NoError(t, cs.Enable())
	require.Equal(t, 1, k.enableAlls)

	require.NoError(t, cs.Close())
	for _, c := range k.counters {
		require.True(t, c.closed)
	}
}

func TestCounterSetInitialize(t *testing.T) {
	t.Run("twice", func(t *testing.T) {
		cs := perfmon.NewCounterSet([]string{"cycles"}, perfmon.WithEncoder(newFakeEncoder()), perfmon.WithKernel(newFakeKernel()))
		require.NoError(t, cs.Initialize())
		err := cs.Initialize()
		require.ErrorIs(t, err, perfmon.ErrInit)
		require.EqualError(t, err, "initialize: initialization error: already initialized")
	})

	t.Run("encoder failure", func(t *testing.T) {
		enc := newFakeEncoder()
		enc.initErr = events.ErrNotInitialized
		cs := perfmon.NewCounterSet([]string{"cycles"}, perfmon.WithEncoder(enc), perfmon.WithKernel(newFakeKernel()))
		err := cs.Initialize()
		require.ErrorIs(t, err, perfmon.ErrInit)
		require.ErrorIs(t, err, events.ErrNotInitialized)
	})

	t.Run("kernel failure", func(t *testing.T) {
		k := newFakeKernel()
		k.initErr = errFakeOpen
		cs := perfmon.NewCounterSet([]string{"cycles"}, perfmon.WithEncoder(newFakeEncoder()), perfmon.WithKernel(k))
		require.ErrorIs(t, cs.Initialize(), perfmon.ErrInit)
	})

	t.Run("create before initialize", func(t *testing.T) {
		cs := perfmon.NewCounterSet([]string{"cycles"}, perfmon.WithEncoder(newFakeEncoder()), perfmon.WithKernel(newFakeKernel()))
		require.ErrorIs(t, cs.Create(0, "cycles"), perfmon.ErrInit)
		require.ErrorIs(t, cs.Enable(), perfmon.ErrInit)
	})

	t.Run("enable before create", func(t *testing.T) {
		cs := perfmon.NewCounterSet([]string{"cycles"}, perfmon.WithEncoder(newFakeEncoder()), perfmon.WithKernel(newFakeKernel()))
		require.NoError(t, cs.Initialize())
		require.ErrorIs(t, cs.Enable(), perfmon.ErrInit)
		require.ErrorIs(t, cs.Disable(), perfmon.ErrInit)
	})
}

func TestCounterSetCreateErrors(t *testing.T) {
	t.Run("encode", func(t *testing.T) {
		k := newFakeKernel()
		cs := perfmon.NewCounterSet([]string{"cycles", "bogus", "instructions"}, perfmon.WithEncoder(newFakeEncoder()), perfmon.WithKernel(k))
		require.NoError(t, cs.Initialize())

		err := cs.CreateAll()
		require.ErrorIs(t, err, perfmon.ErrEncode)
		require.ErrorIs(t, err, events.ErrEventNotFound)
		require.EqualError(t, err, "create: event 1 'bogus': error creating event: event not found")

		var perr *perfmon.Error
		require.ErrorAs(t, err, &perr)
		require.Equal(t, 1, perr.Index)
		require.Equal(t, "bogus", perr.Event)

		// Stops at the first error
		require.Len(t, k.counters, 1)
	})

	t.Run("open", func(t *testing.T) {
		k := newFakeKernel()
		k.openErr["instructions"] = errFakeOpen
		cs := perfmon.NewCounterSet([]string{"cycles", "instructions"}, perfmon.WithEncoder(newFakeEncoder()), perfmon.WithKernel(k))
		require.NoError(t, cs.Initialize())

		err := cs.CreateAll()
		require.ErrorIs(t, err, perfmon.ErrOpen)
		require.ErrorIs(t, err, errFakeOpen)
	})

	t.Run("enable", func(t *testing.T) {
		k := &enableFailKernel{newFakeKernel()}
		cs := perfmon.NewCounterSet([]string{"cycles"}, perfmon.WithEncoder(newFakeEncoder()), perfmon.WithKernel(k))
		require.NoError(t, cs.Initialize())

		err := cs.CreateAll()
		require.ErrorIs(t, err, perfmon.ErrEnable)
		require.ErrorIs(t, err, errFakeEnable)
	})

	t.Run("task enable", func(t *testing.T) {
		k := newFakeKernel()
		k.enableErr = errFakeEnable
		cs := perfmon.NewCounterSet([]string{"cycles"}, perfmon.WithEncoder(newFakeEncoder()), perfmon.WithKernel(k))
		require.NoError(t, cs.Initialize())
		require.NoError(t, cs.CreateAll())

		err := cs.Enable()
		require.ErrorIs(t, err, perfmon.ErrEnable)
		require.EqualError(t, err, "enable: error enabling counters: fake enable failure")
	})

	t.Run("index out of range", func(t *testing.T) {
		cs := perfmon.NewCounterSet([]string{"cycles"}, perfmon.WithEncoder(newFakeEncoder()), perfmon.WithKernel(newFakeKernel()))
		require.NoError(t, cs.Initialize())
		require.ErrorIs(t, cs.Create(1, "cycles"), perfmon.ErrInit)
	})
}

// enableFailKernel opens counters which fail to enable.
type enableFailKernel struct {
	*fakeKernel
}

func (k *enableFailKernel) Open(attr *perf.Attr, pid, cpu int) (perfmon.Counter, error) {
	c, err := k.fakeKernel.Open(attr, pid, cpu)
	if err != nil {
		return nil, err
	}
	c.(*fakeCounter).enableErr = errFakeEnable
	return c, nil
}

func TestCounterSetReadAll(t *testing.T) {
	k := newFakeKernel()
	k.reads["cycles"] = []perf.Count{count(1000, 500, 500)}
	k.reads["instructions"] = []perf.Count{count(2000, 500, 500)}
	cs := newTestSet(t, []string{"cycles", "instructions"}, k)

	buf := make([]perfmon.Snapshot, 2)
	require.NoError(t, cs.ReadAll(buf))
	require.Equal(t, []perfmon.Snapshot{
		{RawCount: 1000, TimeEnabled: 500, TimeRunning: 500},
		{RawCount: 2000, TimeEnabled: 500, TimeRunning: 500},
	}, buf)

	require.ErrorIs(t, cs.ReadAll(make([]perfmon.Snapshot, 1)), perfmon.ErrRead)
}

func TestCounterSetReadAllErrors(t *testing.T) {
	t.Run("scaled", func(t *testing.T) {
		for i, name := range []string{"cycles", "instructions"} {
			k := newFakeKernel()
			k.reads["cycles"] = []perf.Count{count(1, 5, 5)}
			k.reads["instructions"] = []perf.Count{count(1, 5, 5)}
			k.reads[name] = []perf.Count{count(1, 10, 5)}
			cs := newTestSet(t, []string{"cycles", "instructions"}, k)

			err := cs.ReadAll(make([]perfmon.Snapshot, 2))
			require.ErrorIs(t, err, perfmon.ErrContention)

			var perr *perfmon.Error
			require.ErrorAs(t, err, &perr)
			require.Equal(t, i, perr.Index)
			require.Contains(t, err.Error(), "perf event counter was scaled")
		}
	})

	t.Run("read failure", func(t *testing.T) {
		k := newFakeKernel()
		cs := newTestSet(t, []string{"cycles"}, k)
		k.counters[0].readErr = errFakeRead

		err := cs.ReadAll(make([]perfmon.Snapshot, 1))
		require.ErrorIs(t, err, perfmon.ErrRead)
		require.ErrorIs(t, err, errFakeRead)
	})

	t.Run("short read", func(t *testing.T) {
		k := newFakeKernel()
		cs := newTestSet(t, []string{"cycles"}, k)
		k.counters[0].short = true

		err := cs.ReadAll(make([]perfmon.Snapshot, 1))
		require.ErrorIs(t, err, perfmon.ErrRead)
		require.Contains(t, err.Error(), "did not return 3 64-bit values")
	})
}
