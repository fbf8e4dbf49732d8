package kernelsupport

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

const paranoidPath = "/proc/sys/kernel/perf_event_paranoid"

// ErrPerfNotSupported is returned when the kernel was build without perf events
var ErrPerfNotSupported = errors.New("perf events not supported by kernel")

// ParanoidLevel returns the value of /proc/sys/kernel/perf_event_paranoid. The existence of this file is the official
// method for determining if a kernel supports perf_event_open, ErrPerfNotSupported is returned if it is missing.
//
//	-1: allow use of (almost) all events by all users
//	 0: disallow raw tracepoint access for unprivileged users
//	 1: disallow CPU event access for unprivileged users
//	 2: disallow kernel profiling for unprivileged users
func ParanoidLevel() (int, error) {
	return readParanoidLevel(os.DirFS("/"), strings.TrimPrefix(paranoidPath, "/"))
}

func readParanoidLevel(fsys fs.FS, name string) (int, error) {
	contents, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, ErrPerfNotSupported
		}
		return 0, fmt.Errorf("read %s: %w", name, err)
	}

	level, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}

	return level, nil
}
