package perfmon_test

import (
	"encoding/binary"
	"errors"

	"github.com/dylandreimerink/perfmon"
	"github.com/dylandreimerink/perfmon/events"
	"github.com/dylandreimerink/perfmon/perf"
)

var (
	errFakeOpen   = errors.New("fake open failure")
	errFakeEnable = errors.New("fake enable failure")
	errFakeRead   = errors.New("fake read failure")
	errFakeClose  = errors.New("fake close failure")
)

// fakeEncoder maps names to configs of type hardware, unknown names fail.
type fakeEncoder struct {
	configs   map[string]uint64
	initErr   error
	initCalls int
	plms      []events.PLM
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{configs: map[string]uint64{
		"cycles":       0,
		"instructions": 1,
		"cache-misses": 3,
	}}
}

func (e *fakeEncoder) Initialize() error {
	e.initCalls++
	return e.initErr
}

func (e *fakeEncoder) Encode(name string, plm events.PLM, attr *perf.Attr) error {
	config, ok := e.configs[name]
	if !ok {
		return events.ErrEventNotFound
	}

	e.plms = append(e.plms, plm)
	attr.Type = perf.TYPE_HARDWARE
	attr.Config = config
	return nil
}

// fakeCounter returns the queued reads in order, repeating the last one.
type fakeCounter struct {
	attr      perf.Attr
	reads     []perf.Count
	readErr   error
	short     bool
	enableErr error
	enabled   bool
	closeErr  error
	closed    bool
}

func (c *fakeCounter) Enable() error {
	if c.enableErr != nil {
		return c.enableErr
	}
	c.enabled = true
	return nil
}

func (c *fakeCounter) Read(p []byte) (int, error) {
	if c.readErr != nil {
		return -1, c.readErr
	}

	var count perf.Count
	if len(c.reads) > 0 {
		count = c.reads[0]
		if len(c.reads) > 1 {
			c.reads = c.reads[1:]
		}
	}

	binary.NativeEndian.PutUint64(p[0:8], count.Value)
	binary.NativeEndian.PutUint64(p[8:16], count.TimeEnabled)
	binary.NativeEndian.PutUint64(p[16:24], count.TimeRunning)

	if c.short {
		return 16, nil
	}
	return perf.CountSize, nil
}

func (c *fakeCounter) Close() error {
	c.closed = true
	return c.closeErr
}

type fakeKernel struct {
	// reads per event name, counters of the same name share the queue at open time
	reads      map[string][]perf.Count
	openErr    map[string]error
	enableErr  error
	initErr    error
	counters   []*fakeCounter
	enableAlls int
	closeErr   error
	configs    map[uint64]string
}

func newFakeKernel() *fakeKernel {
	return &fakeKernel{
		reads:   map[string][]perf.Count{},
		openErr: map[string]error{},
		configs: map[uint64]string{0: "cycles", 1: "instructions", 3: "cache-misses"},
	}
}

func (k *fakeKernel) Initialize() error {
	return k.initErr
}

func (k *fakeKernel) Open(attr *perf.Attr, pid, cpu int) (perfmon.Counter, error) {
	name := k.configs[attr.Config]
	if err := k.openErr[name]; err != nil {
		return nil, err
	}

	c := &fakeCounter{
		attr:     *attr,
		reads:    append([]perf.Count(nil), k.reads[name]...),
		closeErr: k.closeErr,
	}
	k.counters = append(k.counters, c)
	return c, nil
}

func (k *fakeKernel) EnableAll() error {
	k.enableAlls++
	return k.enableErr
}

func (k *fakeKernel) DisableAll() error {
	return k.enableErr
}

func count(value, enabled, running uint64) perf.Count {
	return perf.Count{Value: value, TimeEnabled: enabled, TimeRunning: running}
}
