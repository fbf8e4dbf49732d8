package perf

import (
	"fmt"

	"github.com/dylandreimerink/perfmon/internal/syscall"
	"golang.org/x/sys/unix"
)

// TaskEnable starts all counters attached to the calling process, regardless of who created them. Counters which
// were explicitly enabled but are part of a disabled task start counting at this point.
func TaskEnable() error {
	err := syscall.Prctl(unix.PR_TASK_PERF_EVENTS_ENABLE)
	if err != nil {
		return fmt.Errorf("prctl(PR_TASK_PERF_EVENTS_ENABLE): %w", err)
	}

	return nil
}

// TaskDisable stops all counters attached to the calling process.
func TaskDisable() error {
	err := syscall.Prctl(unix.PR_TASK_PERF_EVENTS_DISABLE)
	if err != nil {
		return fmt.Errorf("prctl(PR_TASK_PERF_EVENTS_DISABLE): %w", err)
	}

	return nil
}
