package syscall

import "golang.org/x/sys/unix"

var perfIOCtlErrors = map[unix.Errno]string{
	unix.EBADF:  "fd isn't a valid perf event file descriptor",
	unix.EINVAL: "the request or argument is not valid for this perf event",
	unix.ENOTTY: "fd does not refer to a perf event",
}

// IOCtl is a wrapper around the ioctl syscall. The returned error contains perf specific context for common errnos.
func IOCtl(fd int, req uint, arg uintptr) (err error) {
	_, _, e1 := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), arg)
	if e1 != 0 {
		err = &Error{
			Errno: e1,
			Err:   perfIOCtlErrors[e1],
		}
	}
	return
}
