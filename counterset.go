package perfmon

import (
	"errors"
	"fmt"

	"github.com/dylandreimerink/perfmon/perf"
)

var (
	errNoEvents           = errors.New("env `" + EnvEvents + "` not set")
	errAlreadyInitialized = errors.New("already initialized")
	errNotInitialized     = errors.New("not initialized")
	errNotCreated         = errors.New("counter not created")
)

// CounterSet owns the descriptors and counter handles of a list of events. The index of an event in the list
// correlates its descriptor, handle and snapshots.
type CounterSet struct {
	opts options

	descriptors []Descriptor
	counters    []Counter
	initialized bool
}

// NewCounterSet creates a counter set for the given event names, no counters are opened until CreateAll is called.
func NewCounterSet(names []string, opts ...Option) *CounterSet {
	cs := &CounterSet{
		opts:        newOptions(opts),
		descriptors: make([]Descriptor, len(names)),
		counters:    make([]Counter, len(names)),
	}
	for i, name := range names {
		cs.descriptors[i].Name = name
	}

	return cs
}

// Initialize performs the one time setup of the encoder and kernel.
func (cs *CounterSet) Initialize() error {
	if cs.initialized {
		return opError(ErrInit, "initialize", errAlreadyInitialized)
	}

	if err := cs.opts.encoder.Initialize(); err != nil {
		return opError(ErrInit, "initialize", fmt.Errorf("encoder: %w", err))
	}

	if err := cs.opts.kernel.Initialize(); err != nil {
		return opError(ErrInit, "initialize", fmt.Errorf("kernel: %w", err))
	}

	cs.initialized = true
	return nil
}

// Create encodes the event at index, opens a counter for it and enables the counter.
func (cs *CounterSet) Create(index int, name string) error {
	if !cs.initialized {
		return eventError(ErrInit, "create", index, name, errNotInitialized)
	}
	if index < 0 || index >= len(cs.descriptors) {
		return eventError(ErrInit, "create", index, name, fmt.Errorf("index out of range [0, %d)", len(cs.descriptors)))
	}

	desc := &cs.descriptors[index]
	desc.Name = name
	desc.Attr = perf.Attr{}

	if err := cs.opts.encoder.Encode(name, cs.opts.plm, &desc.Attr); err != nil {
		return eventError(ErrEncode, "create", index, name, err)
	}

	desc.Attr.ReadFormat = perf.ReadFormatTotalTimeEnabled | perf.ReadFormatTotalTimeRunning
	desc.Attr.AttrFlags |= perf.AttrFlagsDisabled | perf.AttrFlagsInherit

	counter, err := cs.opts.kernel.Open(&desc.Attr, perf.CallingProcess, perf.AnyCPU)
	if err != nil {
		return eventError(ErrOpen, "create", index, name, err)
	}
	cs.counters[index] = counter

	if err = counter.Enable(); err != nil {
		return eventError(ErrEnable, "create", index, name, err)
	}

	cs.opts.logger.Debug("created counter",
		"index", index,
		"event", name,
		"type", desc.Attr.Type.String(),
		"config", fmt.Sprintf("0x%x", desc.Attr.Config),
	)

	return nil
}

// CreateAll creates the counters for all events in order, stopping at the first error.
func (cs *CounterSet) CreateAll() error {
	for i := range cs.descriptors {
		if err := cs.Create(i, cs.descriptors[i].Name); err != nil {
			return err
		}
	}

	return nil
}

func (cs *CounterSet) ready(op string) error {
	if !cs.initialized {
		return opError(ErrInit, op, errNotInitialized)
	}
	for i, c := range cs.counters {
		if c == nil {
			return eventError(ErrInit, op, i, cs.descriptors[i].Name, errNotCreated)
		}
	}

	return nil
}

// Enable starts all counters of the calling task.
func (cs *CounterSet) Enable() error {
	if err := cs.ready("enable"); err != nil {
		return err
	}

	if err := cs.opts.kernel.EnableAll(); err != nil {
		return opError(ErrEnable, "enable", err)
	}

	return nil
}

// Disable stops all counters of the calling task.
func (cs *CounterSet) Disable() error {
	if err := cs.ready("disable"); err != nil {
		return err
	}

	if err := cs.opts.kernel.DisableAll(); err != nil {
		return opError(ErrEnable, "disable", err)
	}

	return nil
}

// ReadAll reads a snapshot of every counter into buf, which must hold at least Len() snapshots. A counter which
// was multiplexed, so its time enabled differs from its time running, is an error.
func (cs *CounterSet) ReadAll(buf []Snapshot) error {
	if len(buf) < len(cs.counters) {
		return opError(ErrRead, "read", fmt.Errorf("buffer holds %d of %d snapshots", len(buf), len(cs.counters)))
	}

	var raw [perf.CountSize]byte
	for i, c := range cs.counters {
		name := cs.descriptors[i].Name
		if c == nil {
			return eventError(ErrRead, "read", i, name, errNotCreated)
		}

		n, err := c.Read(raw[:])
		if err != nil || n < 0 {
			return eventError(ErrRead, "read", i, name, err)
		}
		if n != perf.CountSize {
			return eventError(ErrRead, "read", i, name, errors.New("read of perf event did not return 3 64-bit values"))
		}

		snap := SnapshotFromCount(perf.DecodeCount(raw[:]))
		if snap.TimeEnabled != snap.TimeRunning {
			return eventError(ErrContention, "read", i, name, nil)
		}

		buf[i] = snap
	}

	return nil
}

// Len returns the number of events.
func (cs *CounterSet) Len() int {
	return len(cs.descriptors)
}

// Descriptors returns the event descriptors in index order.
func (cs *CounterSet) Descriptors() []Descriptor {
	return cs.descriptors
}

// Close closes all opened counters. The set can't be used afterwards.
func (cs *CounterSet) Close() error {
	var errs []error
	for i, c := range cs.counters {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close '%s': %w", cs.descriptors[i].Name, err))
		}
		cs.counters[i] = nil
	}
	cs.initialized = false

	return errors.Join(errs...)
}
