package syscall

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// PerfEventOpen is a wrapper around the perf_event_open syscall. attr must point to a perf_event_attr struct whose
// size field is set. The returned value is the new file descriptor.
func PerfEventOpen(attr unsafe.Pointer, pid, cpu, groupFD int, flags uintptr) (int, error) {
	fd, _, errno := unix.Syscall6(
		unix.SYS_PERF_EVENT_OPEN,
		uintptr(attr),
		uintptr(pid),
		uintptr(cpu),
		uintptr(groupFD),
		flags,
		0,
	)
	if errno != 0 {
		return -1, &Error{
			Errno: errno,
			Err:   perfEventOpenErrors[errno],
		}
	}

	return int(fd), nil
}

// Condensed from the ERRORS section of perf_event_open(2)
var perfEventOpenErrors = map[unix.Errno]string{
	unix.E2BIG: "the perf_event_attr size is smaller than PERF_ATTR_SIZE_VER0, larger than a page, " +
		"or larger than the kernel supports with non-zero extra bytes",

	unix.EACCES: "the event requires CAP_PERFMON or CAP_SYS_ADMIN, or a lower perf_event_paranoid setting; " +
		"counting kernel or hypervisor events as an unprivileged user commonly triggers this",

	unix.EBADF: "the group_fd file descriptor is not valid",

	unix.EBUSY: "another event already has exclusive access to the PMU",

	unix.EFAULT: "the attr pointer points at an invalid memory address",

	unix.EINVAL: "the event is invalid: the config values are out of range, the read_format or flags are " +
		"not supported, the cpu does not exist, or the generic event is not supported",

	unix.EMFILE: "the per-process limit on open file descriptors was reached",

	unix.ENODEV: "the event involves a feature not supported by the current CPU",

	unix.ENOENT: "the type setting is not valid or the generic event is not supported",

	unix.ENOSPC: "there is no room for the requested breakpoint event",

	unix.EOPNOTSUPP: "the event requires hardware support which is not available",

	unix.EPERM: "an unsupported exclude_hv, exclude_idle, exclude_user or exclude_kernel setting was " +
		"specified, or the event requires more privileges",

	unix.ESRCH: "the process to attach to does not exist",
}
