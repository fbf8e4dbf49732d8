package kernelsupport

import (
	"fmt"
	"strings"
)

// PerfSupport is a flagset which describes which perf_event_open features are supported
type PerfSupport uint64

const (
	// KFeatPerfEventOpen means the perf_event_open syscall exists
	KFeatPerfEventOpen PerfSupport = 1 << iota
	// KFeatPerfTaskEnable means prctl(PR_TASK_PERF_EVENTS_ENABLE) is available
	KFeatPerfTaskEnable
	// KFeatPerfInherit means counters can be inherited by child tasks
	KFeatPerfInherit
	// KFeatPerfReadFormatTimes means reads can include total time enabled and running
	KFeatPerfReadFormatTimes
	// KFeatPerfExcludeHost means exclude_host and exclude_guest are understood
	KFeatPerfExcludeHost
	// KFeatPerfCloseOnExec means PERF_FLAG_FD_CLOEXEC is accepted
	KFeatPerfCloseOnExec
	// KFeatPerfCapPerfmon means CAP_PERFMON can be used instead of CAP_SYS_ADMIN
	KFeatPerfCapPerfmon

	// An end marker for enumeration, not an actual feature flag
	kFeatPerfMax
)

// Has returns true if 'ps' has all the specified flags
func (ps PerfSupport) Has(flags PerfSupport) bool {
	return ps&flags == flags
}

var perfSupportToString = map[PerfSupport]string{
	KFeatPerfEventOpen:       "perf_event_open",
	KFeatPerfTaskEnable:      "Task enable/disable",
	KFeatPerfInherit:         "Inherit",
	KFeatPerfReadFormatTimes: "Read format times",
	KFeatPerfExcludeHost:     "Exclude host/guest",
	KFeatPerfCloseOnExec:     "Close on exec",
	KFeatPerfCapPerfmon:      "CAP_PERFMON",
}

func (ps PerfSupport) String() string {
	var features []string
	for i := PerfSupport(1); i < kFeatPerfMax; i = i << 1 {
		// If this flag is set
		if ps&i > 0 {
			featStr := perfSupportToString[i]
			if featStr == "" {
				featStr = fmt.Sprintf("missing feature str(%d)", i)
			}
			features = append(features, featStr)
		}
	}

	if len(features) == 0 {
		return "No support"
	}

	return strings.Join(features, ", ")
}
