package perf

import "unsafe"

// Type https://elixir.bootlin.com/linux/latest/source/include/uapi/linux/perf_event.h#L32
type Type uint32

const (
	// TYPE_HARDWARE This indicates one of the "generalized"  hardware  events
	// provided  by the kernel.  See the config field definition
	// for more details.
	TYPE_HARDWARE Type = iota

	// TYPE_SOFTWARE This indicates one of the  software-defined  events  provided
	// by  the  kernel  (even  if  no hardware support is
	// available).
	TYPE_SOFTWARE

	// TYPE_TRACEPOINT This indicates a tracepoint provided by the kernel tracepoint infrastructure.
	TYPE_TRACEPOINT

	// TYPE_HW_CACHE  This  indicates  a hardware cache event. This has a special encoding,
	// described in the config field definition.
	TYPE_HW_CACHE

	// TYPE_RAW This indicates a "raw" implementation-specific  event  in
	// the config field.
	TYPE_RAW

	// TYPE_BREAKPOINT This  indicates  a hardware breakpoint as provided by the CPU.
	// Breakpoints can be read/write accesses  to  an  address as well as execution of an instruction address.
	TYPE_BREAKPOINT
)

var typeToString = map[Type]string{
	TYPE_HARDWARE:   "hardware",
	TYPE_SOFTWARE:   "software",
	TYPE_TRACEPOINT: "tracepoint",
	TYPE_HW_CACHE:   "hw-cache",
	TYPE_RAW:        "raw",
	TYPE_BREAKPOINT: "breakpoint",
}

func (t Type) String() string {
	if s, ok := typeToString[t]; ok {
		return s
	}

	// Dynamic PMUs get a type number assigned by the kernel, see /sys/bus/event_source/devices/*/type
	return "dynamic"
}

// AttrFlags are used to pass a lot of boolean flags efficiently to the kerenl
type AttrFlags uint64

const (
	// AttrFlagsDisabled off by default
	AttrFlagsDisabled AttrFlags = 1 << iota
	// AttrFlagsInherit children inherit it
	AttrFlagsInherit
	// AttrFlagsPinned must always be on PMU
	AttrFlagsPinned
	// AttrFlagsExclusive only group on PMU
	AttrFlagsExclusive
	// AttrFlagsExcludeUser don't count user
	AttrFlagsExcludeUser
	// AttrFlagsExcludeKernel ditto kernel
	AttrFlagsExcludeKernel
	// AttrFlagsExcludeHV ditto hypervisor
	AttrFlagsExcludeHV
	// AttrFlagsExcludeIdle don't count when idle
	AttrFlagsExcludeIdle
)

const (
	// AttrFlagsEnableOnExec next exec enables
	AttrFlagsEnableOnExec AttrFlags = 1 << 12
	// AttrFlagsExcludeHost don't count in host
	AttrFlagsExcludeHost AttrFlags = 1 << 19
	// AttrFlagsExcludeGuest don't count in guest
	AttrFlagsExcludeGuest AttrFlags = 1 << 20
)

// ExcludeMask contains all flags which limit the privilege levels at which an event is counted.
const ExcludeMask = AttrFlagsExcludeUser | AttrFlagsExcludeKernel | AttrFlagsExcludeHV

// ReadFormat selects the values returned by a read of the perf event file descriptor.
type ReadFormat uint64

const (
	// ReadFormatTotalTimeEnabled adds the time the event was enabled
	ReadFormatTotalTimeEnabled ReadFormat = 1 << iota
	// ReadFormatTotalTimeRunning adds the time the event was actually on the PMU
	ReadFormatTotalTimeRunning
	// ReadFormatID adds a unique id for the event
	ReadFormatID
	// ReadFormatGroup reads all events of a group at once
	ReadFormatGroup
	// ReadFormatLost adds the number of lost samples
	ReadFormatLost
)

// Attr is the go version of the perf_event_attr struct as defined by the kernel.
// https://elixir.bootlin.com/linux/v5.14.14/source/include/uapi/linux/perf_event.h#L338
type Attr struct {
	Type   Type
	Size   uint32
	Config uint64
	// union of sample_period and sample_frequency
	SamplePeriodFreq uint64
	SampleType       uint64
	ReadFormat       ReadFormat
	AttrFlags        AttrFlags
	// union of wakeup_events and wakeup_watermark
	WakeupEventsWatermark uint32
	BPType                uint32
	// union of bp_addr, kprobe_func, uprobe_path, and config1
	Config1 uint64
	// union of bp_len, kprobe_addr, probe_offset, and config2
	Config2 uint64
	// Unum of perf_branch_sample_type
	BranchSampleType uint64
	// Defines set of user regs to dump on samples.
	// See asm/perf_regs.h for details.
	SampleRegsUser uint64
	// Defines size of the user stack to dump on samples.
	SampleStackUser uint32
	ClockID         int32
	// Defines set of regs to dump for each sample
	SampleRegsIntr uint64
	// Wakeup watermark for AUX area
	AUXWatermark   uint32
	SampleMaxStack uint16
	// __reserved_2
	_             uint16
	AUXSampleSize uint32
	// __reserved_3
	_       uint32
	SigData uint64
}

// AttrSize is the value of the size field the kernel expects, PERF_ATTR_SIZE_VER7.
const AttrSize = uint32(unsafe.Sizeof(Attr{}))
