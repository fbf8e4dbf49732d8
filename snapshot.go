package perfmon

import (
	"math"
	"strconv"

	"github.com/dylandreimerink/perfmon/perf"
)

// UndefinedValue is reported as the value of a Result whose delta is undefined. It is the bit pattern of the
// "integer indefinite" value x86-64 produces when truncating NaN to an integer.
const UndefinedValue uint64 = 1 << 63

// Snapshot is the state of one counter at an instant.
type Snapshot struct {
	RawCount    int64
	TimeEnabled int64
	TimeRunning int64
}

// SnapshotFromCount converts a kernel count to a snapshot. Values above math.MaxInt64 become negative and thus
// overflowed.
func SnapshotFromCount(c perf.Count) Snapshot {
	return Snapshot{
		RawCount:    int64(c.Value),
		TimeEnabled: int64(c.TimeEnabled),
		TimeRunning: int64(c.TimeRunning),
	}
}

// IsOverflowed returns true if any of the values wrapped past the signed 64 bit range.
func (s Snapshot) IsOverflowed() bool {
	return s.RawCount < 0 || s.TimeEnabled < 0 || s.TimeRunning < 0
}

// IsContended returns true if the counter was never scheduled on the PMU.
func (s Snapshot) IsContended() bool {
	return s.TimeEnabled == 0
}

// Sub returns the number of events counted between prior and s. The delta is undefined if either snapshot is
// overflowed or contended.
func (s Snapshot) Sub(prior Snapshot) Delta {
	if s.IsOverflowed() || prior.IsOverflowed() || s.IsContended() || prior.IsContended() {
		return Delta{undefined: true}
	}

	return Delta{value: s.RawCount - prior.RawCount}
}

// Delta is the difference between two snapshots of the same counter, or the undefined sentinel.
type Delta struct {
	value     int64
	undefined bool
}

// Undefined returns true if the delta could not be computed because of overflow or contention.
func (d Delta) Undefined() bool {
	return d.undefined
}

// Int64 returns the exact signed difference, or 0 if undefined.
func (d Delta) Int64() int64 {
	return d.value
}

// Uint64 returns the value reported to callers. A negative difference is reinterpreted, not clamped.
func (d Delta) Uint64() uint64 {
	if d.undefined {
		return UndefinedValue
	}
	return uint64(d.value)
}

// Float64 returns the difference as a float, NaN if undefined.
func (d Delta) Float64() float64 {
	if d.undefined {
		return math.NaN()
	}
	return float64(d.value)
}

func (d Delta) String() string {
	if d.undefined {
		return "NaN"
	}
	return strconv.FormatInt(d.value, 10)
}

// Result is the delta of one event for one Begin/End interval.
type Result struct {
	Name  string
	Value uint64
}

// Undefined returns true if the value is the undefined sentinel.
func (r Result) Undefined() bool {
	return r.Value == UndefinedValue
}
