package syscall

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Read is a wrapper around the read syscall. Reads interrupted by a signal are retried since a perf counter read
// never blocks for long.
func Read(fd int, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	for {
		n, _, e1 := unix.Syscall(unix.SYS_READ, uintptr(fd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		if e1 == unix.EINTR {
			continue
		}
		if e1 != 0 {
			return -1, &Error{
				Errno: e1,
				Err: map[unix.Errno]string{
					unix.EBADF:  "fd isn't a valid file descriptor open for reading",
					unix.ENOSPC: "the buffer is too small to hold the configured read format",
				}[e1],
			}
		}

		return int(n), nil
	}
}
