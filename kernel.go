package perfmon

import (
	"fmt"

	"github.com/dylandreimerink/perfmon/events"
	"github.com/dylandreimerink/perfmon/kernelsupport"
	"github.com/dylandreimerink/perfmon/perf"
)

// Encoder translates an event name and privilege level into a perf attribute.
type Encoder interface {
	Initialize() error
	Encode(name string, plm events.PLM, attr *perf.Attr) error
}

// Counter is an opened counter handle.
type Counter interface {
	Enable() error
	Read(p []byte) (int, error)
	Close() error
}

// Kernel opens counters and starts or stops all counters of the calling task.
type Kernel interface {
	Initialize() error
	Open(attr *perf.Attr, pid, cpu int) (Counter, error)
	EnableAll() error
	DisableAll() error
}

// NewKernel returns the Kernel backed by the perf_event_open syscall.
func NewKernel() Kernel {
	return perfKernel{features: kernelsupport.CurrentFeatures}
}

type perfKernel struct {
	features func() (kernelsupport.KernelFeatures, error)
}

const requiredPerfFeatures = kernelsupport.KFeatPerfEventOpen |
	kernelsupport.KFeatPerfTaskEnable |
	kernelsupport.KFeatPerfReadFormatTimes

func (k perfKernel) Initialize() error {
	features, err := k.features()
	if err != nil {
		return fmt.Errorf("detect kernel features: %w", err)
	}

	if !features.Perf.Has(requiredPerfFeatures) {
		return fmt.Errorf(
			"%w: kernel %s lacks '%s'",
			kernelsupport.ErrPerfNotSupported,
			features.Release,
			requiredPerfFeatures,
		)
	}

	_, err = kernelsupport.ParanoidLevel()
	return err
}

func (perfKernel) Open(attr *perf.Attr, pid, cpu int) (Counter, error) {
	event, err := perf.Open(attr, pid, cpu, perf.NoGroup, 0)
	if err != nil {
		return nil, err
	}

	return event, nil
}

func (perfKernel) EnableAll() error {
	return perf.TaskEnable()
}

func (perfKernel) DisableAll() error {
	return perf.TaskDisable()
}
