package kernelsupport

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/dylandreimerink/perfmon/internal/cstr"
)

// KernelFeatures is a set of flagsets which describe the perf support of a kernel version.
type KernelFeatures struct {
	// Release is the raw release string as reported by uname
	Release string
	Perf    PerfSupport
}

var (
	currentOnce     sync.Once
	currentFeatures KernelFeatures
	currentErr      error
)

// CurrentFeatures returns the features of the running kernel. They are detected on first use and cached since they
// will not change during program execution.
func CurrentFeatures() (KernelFeatures, error) {
	currentOnce.Do(func() {
		currentFeatures, currentErr = GetKernelFeatures()
	})
	return currentFeatures, currentErr
}

// GetKernelFeatures returns the perf features of the kernel on which the current program is running.
func GetKernelFeatures() (KernelFeatures, error) {
	var utsname syscall.Utsname
	err := syscall.Uname(&utsname)
	if err != nil {
		return KernelFeatures{}, fmt.Errorf("error while calling syscall.Uname: %w", err)
	}

	releaseBytes := make([]byte, len(utsname.Release))
	for i, v := range utsname.Release {
		releaseBytes[i] = byte(v)
	}

	return FeaturesForRelease(cstr.BytesToString(releaseBytes))
}

// FeaturesForRelease returns the perf features available in the given kernel release, like "5.15.0-91-generic".
func FeaturesForRelease(release string) (KernelFeatures, error) {
	version, err := parseKernelVersion(release)
	if err != nil {
		return KernelFeatures{}, err
	}

	features := KernelFeatures{Release: release}
	for _, kvf := range featureMinVersion {
		if version.Higher(kvf.version) {
			features.Perf = features.Perf | kvf.features
		}
	}

	return features, nil
}

type kernelVersion struct {
	major int
	minor int
	patch int
}

// Higher returns true if the 'cmp' version is higher than the 'kv' version
func (kv kernelVersion) Higher(cmp kernelVersion) bool {
	if kv.major > cmp.major {
		return true
	}
	if kv.major < cmp.major {
		return false
	}

	// Majors are equal

	if kv.minor > cmp.minor {
		return true
	}
	if kv.minor < cmp.minor {
		return false
	}

	// Minors are equal

	return kv.patch >= cmp.patch
}

func parseKernelVersion(release string) (version kernelVersion, err error) {
	// The base version is before the -, discard anything after the -
	base := strings.SplitN(release, "-", 2)[0]
	baseParts := strings.Split(base, ".")
	if len(baseParts) > 2 {
		version.patch, err = leadingInt(baseParts[2])
		if err != nil {
			return version, fmt.Errorf("error while parsing kernel patch version '%s': %w", baseParts[2], err)
		}
	}

	if len(baseParts) > 1 {
		version.minor, err = leadingInt(baseParts[1])
		if err != nil {
			return version, fmt.Errorf("error while parsing kernel minor version '%s': %w", baseParts[1], err)
		}
	}

	version.major, err = leadingInt(baseParts[0])
	if err != nil {
		return version, fmt.Errorf("error while parsing kernel major version '%s': %w", baseParts[0], err)
	}

	return version, nil
}

// leadingInt parses the digits at the start of s, so suffixes like "0+" or "44_rc1" don't fail the parse.
func leadingInt(s string) (int, error) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	return strconv.Atoi(s[:end])
}
