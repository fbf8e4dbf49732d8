package perf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"github.com/dylandreimerink/perfmon/internal/syscall"
	"golang.org/x/sys/unix"
)

const (
	// CallingProcess as pid measures the process (and with inherit, its children) calling Open.
	CallingProcess = 0
	// AnyCPU as cpu measures the process on whichever CPU it runs.
	AnyCPU = -1
	// NoGroup as group fd makes the event its own group leader.
	NoGroup = -1
)

type OpenFlags uintptr

const (
	// OpenFDNoGroup This  flag  tells the event to ignore the group_fd parameter ex‐
	// cept for the purpose of setting up output redirection using  the
	// PERF_FLAG_FD_OUTPUT flag.
	OpenFDNoGroup OpenFlags = 1 << iota

	// OpenFDOutput This flag re-routes the event's sampled output to instead be in‐
	// cluded in the mmap buffer of the event specified by group_fd.
	OpenFDOutput

	// OpenPIDCgroup This flag activates per-container system-wide monitoring, pid
	// is a file descriptor of a cgroup directory.
	OpenPIDCgroup

	// OpenFDCloseOnExec This  flag  enables the close-on-exec flag for the created event
	// file descriptor, so that the file  descriptor  is  automatically
	// closed  on  execve(2).
	OpenFDCloseOnExec
)

// ErrShortRead is returned when a read of a counter returns less bytes than requested by its read format.
var ErrShortRead = errors.New("short read of perf event")

type FD int

// Close closes a file descriptor
func (fd FD) Close() error {
	_, _, errno := unix.Syscall(unix.SYS_CLOSE, uintptr(fd), 0, 0)
	if errno != 0 {
		return &syscall.Error{
			Errno: errno,
			Err: map[unix.Errno]string{
				unix.EBADF: "fd isn't a valid open file descriptor",
				unix.EINTR: "The Close() call was interrupted by a signal; see signal(7)",
				unix.EIO:   "An I/O error occurred",
			}[errno],
		}
	}

	return nil
}

// Event represents an opened linux perf event in userspace.
type Event struct {
	Type Type

	fd FD
}

// Open is a wrapper around the perf_event_open syscall. If attr.Size is zero it is set to AttrSize.
func Open(attr *Attr, pid, cpu, groupFD int, flags OpenFlags) (*Event, error) {
	if attr.Size == 0 {
		attr.Size = AttrSize
	}

	fd, err := syscall.PerfEventOpen(unsafe.Pointer(attr), pid, cpu, groupFD, uintptr(flags))
	if err != nil {
		return nil, err
	}

	return &Event{
		Type: attr.Type,
		fd:   FD(fd),
	}, nil
}

// FD returns the file descriptor of the event.
func (e *Event) FD() FD {
	return e.fd
}

// Enable starts counting for this event, it is the per-handle counterpart of TaskEnable.
func (e *Event) Enable() error {
	err := syscall.IOCtl(int(e.fd), unix.PERF_EVENT_IOC_ENABLE, 0)
	if err != nil {
		return fmt.Errorf("ioctl enable perf event: %w", err)
	}

	return nil
}

// Disable stops counting for this event.
func (e *Event) Disable() error {
	err := syscall.IOCtl(int(e.fd), unix.PERF_EVENT_IOC_DISABLE, 0)
	if err != nil {
		return fmt.Errorf("ioctl disable perf event: %w", err)
	}

	return nil
}

// Reset sets the event count to zero. The enabled and running times are not reset.
func (e *Event) Reset() error {
	err := syscall.IOCtl(int(e.fd), unix.PERF_EVENT_IOC_RESET, 0)
	if err != nil {
		return fmt.Errorf("ioctl reset perf event: %w", err)
	}

	return nil
}

// Read reads the raw read format of the event into p and returns the number of bytes read.
func (e *Event) Read(p []byte) (int, error) {
	return syscall.Read(int(e.fd), p)
}

// Count is the result of reading an event opened with the ReadFormatTotalTimeEnabled and
// ReadFormatTotalTimeRunning read format.
type Count struct {
	Value       uint64
	TimeEnabled uint64
	TimeRunning uint64
}

// CountSize is the amount of bytes needed to read a Count.
const CountSize = int(unsafe.Sizeof(Count{}))

// ReadCount reads the value, time enabled and time running of the event.
func (e *Event) ReadCount() (Count, error) {
	var buf [CountSize]byte
	n, err := e.Read(buf[:])
	if err != nil {
		return Count{}, err
	}
	if n != CountSize {
		return Count{}, fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, n, CountSize)
	}

	return DecodeCount(buf[:]), nil
}

// DecodeCount decodes the kernel read format for a single non-group event with total times enabled and running.
func DecodeCount(b []byte) Count {
	return Count{
		Value:       binary.NativeEndian.Uint64(b[0:8]),
		TimeEnabled: binary.NativeEndian.Uint64(b[8:16]),
		TimeRunning: binary.NativeEndian.Uint64(b[16:24]),
	}
}

// Close closes the file descriptor of the event, which also stops counting.
func (e *Event) Close() error {
	return e.fd.Close()
}
