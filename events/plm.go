package events

import (
	"fmt"

	"github.com/dylandreimerink/perfmon/perf"
)

// PLM is a privilege level mask, it selects at which privilege levels an event is counted.
type PLM uint8

const (
	// PLM0 is kernel level
	PLM0 PLM = 1 << iota
	// PLM1 is unused on linux
	PLM1
	// PLM2 is unused on linux
	PLM2
	// PLM3 is user level
	PLM3
	// PLMH is hypervisor level
	PLMH

	// DefaultPLM is used when no privilege level is requested
	DefaultPLM = PLM0 | PLM3
)

// apply sets the exclude flags of the attr so only the levels in the mask are counted.
func (plm PLM) apply(attr *perf.Attr) {
	if plm == 0 {
		plm = DefaultPLM
	}

	attr.AttrFlags |= perf.ExcludeMask
	if plm&PLM3 != 0 {
		attr.AttrFlags &^= perf.AttrFlagsExcludeUser
	}
	if plm&PLM0 != 0 {
		attr.AttrFlags &^= perf.AttrFlagsExcludeKernel
	}
	if plm&PLMH != 0 {
		attr.AttrFlags &^= perf.AttrFlagsExcludeHV
	}
}

// parseModifiers turns a modifier string like "u", "k" or "uk" into a privilege level mask.
func parseModifiers(mods string) (PLM, error) {
	var plm PLM
	for _, m := range mods {
		switch m {
		case 'u':
			plm |= PLM3
		case 'k':
			plm |= PLM0
		case 'h':
			plm |= PLMH
		default:
			return 0, fmt.Errorf("%w: unknown modifier '%c' in '%s'", ErrInvalidAttribute, m, mods)
		}
	}

	return plm, nil
}

// isModifiers returns true if every character of s is a known privilege level modifier.
func isModifiers(s string) bool {
	if s == "" {
		return false
	}
	_, err := parseModifiers(s)
	return err == nil
}

// ParsePLM parses a privilege level name as used in configuration files.
func ParsePLM(name string) (PLM, error) {
	switch name {
	case "", "user":
		return PLM3, nil
	case "kernel":
		return PLM0, nil
	case "user+kernel", "default":
		return DefaultPLM, nil
	case "all":
		return PLM0 | PLM3 | PLMH, nil
	}

	return 0, fmt.Errorf("unknown privilege level '%s', pick from: user, kernel, user+kernel, all", name)
}
