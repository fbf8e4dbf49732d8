package syscall

import "golang.org/x/sys/unix"

// Prctl is a wrapper around the prctl syscall for options which take no arguments, like
// PR_TASK_PERF_EVENTS_ENABLE and PR_TASK_PERF_EVENTS_DISABLE.
func Prctl(option int) error {
	_, _, e1 := unix.Syscall6(unix.SYS_PRCTL, uintptr(option), 0, 0, 0, 0, 0)
	if e1 != 0 {
		return &Error{
			Errno: e1,
			Err: map[unix.Errno]string{
				unix.EINVAL: "option is not recognized by this kernel",
			}[e1],
		}
	}

	return nil
}
