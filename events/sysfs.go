package events

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

// This file contains the logic to encode events of PMUs which describe themselves in sysfs.

const pmuDevicesPath = "bus/event_source/devices"

// bitRange is an inclusive range of bits in a config field.
type bitRange struct {
	lo, hi uint
}

// format describes where the value of a PMU term is placed, parsed from files like
// /sys/bus/event_source/devices/cpu/format/umask which contain "config:8-15".
type format struct {
	field  string
	ranges []bitRange
}

func parseFormat(contents string) (format, error) {
	contents = strings.TrimSpace(contents)
	field, bits, found := strings.Cut(contents, ":")
	if !found {
		return format{}, fmt.Errorf("invalid format '%s'", contents)
	}

	f := format{field: field}
	for _, part := range strings.Split(bits, ",") {
		loStr, hiStr, isRange := strings.Cut(part, "-")
		if !isRange {
			hiStr = loStr
		}

		lo, err := strconv.ParseUint(loStr, 10, 6)
		if err != nil {
			return format{}, fmt.Errorf("invalid format '%s': %w", contents, err)
		}
		hi, err := strconv.ParseUint(hiStr, 10, 6)
		if err != nil {
			return format{}, fmt.Errorf("invalid format '%s': %w", contents, err)
		}
		if hi < lo {
			return format{}, fmt.Errorf("invalid format '%s': bit range is reversed", contents)
		}

		f.ranges = append(f.ranges, bitRange{lo: uint(lo), hi: uint(hi)})
	}

	return f, nil
}

// place spreads the bits of value over the ranges of the format, lowest bits first.
func (f format) place(value uint64) (uint64, error) {
	var out uint64
	remaining := value
	for _, r := range f.ranges {
		for bit := r.lo; bit <= r.hi; bit++ {
			if remaining&1 == 1 {
				out |= 1 << bit
			}
			remaining >>= 1
		}
	}
	if remaining != 0 {
		return 0, fmt.Errorf("%w: value 0x%x doesn't fit in format %s", ErrInvalidAttribute, value, f.field)
	}

	return out, nil
}

// pmu is a performance monitoring unit as described by sysfs.
type pmu struct {
	fsys fs.FS
	name string
	typ  uint32
}

func openPMU(fsys fs.FS, name string) (*pmu, error) {
	contents, err := fs.ReadFile(fsys, path.Join(pmuDevicesPath, name, "type"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: unknown PMU '%s'", ErrEventNotFound, name)
		}
		return nil, fmt.Errorf("read PMU type: %w", err)
	}

	typ, err := strconv.ParseUint(strings.TrimSpace(string(contents)), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("parse PMU type of '%s': %w", name, err)
	}

	return &pmu{fsys: fsys, name: name, typ: uint32(typ)}, nil
}

func (p *pmu) format(term string) (format, bool, error) {
	contents, err := fs.ReadFile(p.fsys, path.Join(pmuDevicesPath, p.name, "format", term))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return format{}, false, nil
		}
		return format{}, false, fmt.Errorf("read format: %w", err)
	}

	f, err := parseFormat(string(contents))
	return f, err == nil, err
}

func (p *pmu) alias(name string) ([]*termExpr, bool, error) {
	filename := path.Join(pmuDevicesPath, p.name, "events", name)
	contents, err := fs.ReadFile(p.fsys, filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read event alias: %w", err)
	}

	terms, err := parseTerms(filename, string(contents))
	return terms, err == nil, err
}

// configs holds the three config fields of an attr while terms are applied.
type configs map[string]uint64

// applyTerms applies all terms to the configs. Bare terms which are not a format are looked up as event aliases,
// aliases may not refer to other aliases.
func (p *pmu) applyTerms(cfg configs, terms []*termExpr, allowAlias bool) error {
	for _, t := range terms {
		value := uint64(1)
		if t.Value != "" {
			v, err := strconv.ParseUint(t.Value, 0, 64)
			if err != nil {
				return fmt.Errorf("%w: term '%s' value '%s' is not a number", ErrInvalidAttribute, t.Name, t.Value)
			}
			value = v
		}

		switch t.Name {
		case "config", "config1", "config2":
			cfg[t.Name] |= value
			continue
		}

		f, ok, err := p.format(t.Name)
		if err != nil {
			return err
		}
		if ok {
			placed, err := f.place(value)
			if err != nil {
				return err
			}
			if _, valid := cfg[f.field]; !valid {
				return fmt.Errorf("%w: format of '%s' uses unknown field '%s'", ErrInvalidAttribute, t.Name, f.field)
			}
			cfg[f.field] |= placed
			continue
		}

		if allowAlias && t.Value == "" {
			aliasTerms, ok, err := p.alias(t.Name)
			if err != nil {
				return err
			}
			if ok {
				if err := p.applyTerms(cfg, aliasTerms, false); err != nil {
					return fmt.Errorf("event '%s/%s/': %w", p.name, t.Name, err)
				}
				continue
			}
		}

		return fmt.Errorf("%w: PMU '%s' has no term or event '%s'", ErrInvalidAttribute, p.name, t.Name)
	}

	return nil
}

// listPMUs returns the names of all PMUs in sysfs, or nothing if sysfs is not available.
func listPMUs(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, pmuDevicesPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list PMUs: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names, nil
}
