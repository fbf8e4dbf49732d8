package events

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/dylandreimerink/perfmon/perf"
)

var (
	// ErrNotInitialized is returned when Encode is called before Initialize
	ErrNotInitialized = errors.New("encoder not initialized")
	// ErrEventNotFound is returned when a name doesn't match any known event, PMU or tracepoint
	ErrEventNotFound = errors.New("event not found")
	// ErrInvalidAttribute is returned for unknown or conflicting umasks, modifiers and PMU terms
	ErrInvalidAttribute = errors.New("invalid event attribute")
	// ErrSyntax is returned when an event name can't be parsed
	ErrSyntax = errors.New("invalid event syntax")
)

var rawEvent = regexp.MustCompile(`^r([0-9a-fA-F]+)$`)

// Encoder encodes event names into perf attributes. The zero value is not usable, use NewEncoder.
type Encoder struct {
	sysfs   fs.FS
	tracefs fs.FS

	initialized bool
	pmus        []string
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithSysFS sets the file system used to look up PMUs, it must be rooted like /sys.
func WithSysFS(fsys fs.FS) EncoderOption {
	return func(e *Encoder) {
		e.sysfs = fsys
	}
}

// WithTraceFS sets the file system used to look up tracepoints, it must be rooted like /sys/kernel/tracing.
func WithTraceFS(fsys fs.FS) EncoderOption {
	return func(e *Encoder) {
		e.tracefs = fsys
	}
}

// NewEncoder creates a new encoder which uses the sysfs and tracefs of the host unless overwritten by options.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{}
	for _, opt := range opts {
		opt(e)
	}

	if e.sysfs == nil {
		e.sysfs = os.DirFS("/sys")
	}
	if e.tracefs == nil {
		e.tracefs = perf.TraceFS()
	}

	return e
}

// Initialize discovers the PMUs of the system. It must be called before Encode, calling it again is a no-op.
func (e *Encoder) Initialize() error {
	if e.initialized {
		return nil
	}

	pmus, err := listPMUs(e.sysfs)
	if err != nil {
		return err
	}

	e.pmus = pmus
	e.initialized = true

	return nil
}

// PMUs returns the names of the PMUs found during initialization.
func (e *Encoder) PMUs() []string {
	return e.pmus
}

// Encode parses the event name and writes the resulting type, config and exclude flags into attr. Other fields of attr
// are reset. plm selects the privilege levels to count at, unless the event name contains modifiers.
func (e *Encoder) Encode(name string, plm PLM, attr *perf.Attr) error {
	if !e.initialized {
		return ErrNotInitialized
	}

	expr, err := parseEvent(name)
	if err != nil {
		return err
	}

	*attr = perf.Attr{Size: perf.AttrSize}

	var mods string
	if expr.PMU != nil {
		err = e.encodePMU(expr.PMU, attr)
		mods = expr.PMU.Modifiers
	} else {
		mods, err = e.encodeSymbol(expr.Symbol, attr)
	}
	if err != nil {
		return err
	}

	if mods != "" {
		plm, err = parseModifiers(mods)
		if err != nil {
			return err
		}
	} else if attr.Type == perf.TYPE_TRACEPOINT {
		// Tracepoints fire in kernel context, excluding the kernel would make them count nothing
		plm |= PLM0
	}

	plm.apply(attr)

	return nil
}

// encodeSymbol encodes a named event and returns the privilege level modifiers found in its attributes.
func (e *Encoder) encodeSymbol(sym *symbolExpr, attr *perf.Attr) (string, error) {
	key := strings.ToLower(sym.Name)

	if basic, ok := generic[key]; ok {
		attr.Type = basic.typ
		attr.Config = basic.config
		return modifiersOnly(sym)
	}

	if level, ok := pfmCaches[key]; ok {
		return encodeCache(sym, level, attr)
	}

	if m := rawEvent.FindStringSubmatch(sym.Name); m != nil {
		config, err := strconv.ParseUint(m[1], 16, 64)
		if err != nil {
			return "", fmt.Errorf("%w: raw event '%s': %s", ErrInvalidAttribute, sym.Name, err)
		}
		attr.Type = perf.TYPE_RAW
		attr.Config = config
		return modifiersOnly(sym)
	}

	if len(sym.Attrs) > 0 && perf.HasTracepointCategory(e.tracefs, sym.Name) {
		id, err := perf.TracepointID(e.tracefs, sym.Name, sym.Attrs[0])
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("%w: tracepoint '%s:%s'", ErrEventNotFound, sym.Name, sym.Attrs[0])
			}
			return "", err
		}
		attr.Type = perf.TYPE_TRACEPOINT
		attr.Config = id
		return modifiersOnly(&symbolExpr{Name: sym.Name, Attrs: sym.Attrs[1:]})
	}

	return "", fmt.Errorf("%w: '%s'", ErrEventNotFound, sym.Name)
}

// modifiersOnly validates that all attributes of the symbol are privilege level modifiers.
func modifiersOnly(sym *symbolExpr) (string, error) {
	var mods string
	for _, a := range sym.Attrs {
		if !isModifiers(a) {
			return "", fmt.Errorf("%w: '%s' has no attribute '%s'", ErrInvalidAttribute, sym.Name, a)
		}
		mods += a
	}

	return mods, nil
}

// encodeCache encodes a libpfm cache event. The operation defaults to READ and the result to ACCESS.
func encodeCache(sym *symbolExpr, level uint64, attr *perf.Attr) (string, error) {
	var (
		op, result       uint64
		opSet, resultSet bool
		mods             string
	)

	for _, a := range sym.Attrs {
		lower := strings.ToLower(a)
		if v, ok := cacheOps[lower]; ok {
			if opSet {
				return "", fmt.Errorf("%w: '%s' has conflicting operations", ErrInvalidAttribute, sym.Name)
			}
			op, opSet = v, true
			continue
		}
		if v, ok := cacheResults[lower]; ok {
			if resultSet {
				return "", fmt.Errorf("%w: '%s' has conflicting results", ErrInvalidAttribute, sym.Name)
			}
			result, resultSet = v, true
			continue
		}
		if isModifiers(a) {
			mods += a
			continue
		}

		return "", fmt.Errorf("%w: '%s' has no attribute '%s'", ErrInvalidAttribute, sym.Name, a)
	}

	attr.Type = perf.TYPE_HW_CACHE
	attr.Config = cacheConfig(level, op, result)

	return mods, nil
}

func (e *Encoder) encodePMU(expr *pmuExpr, attr *perf.Attr) error {
	p, err := openPMU(e.sysfs, expr.PMU)
	if err != nil {
		return err
	}

	cfg := configs{"config": 0, "config1": 0, "config2": 0}
	err = p.applyTerms(cfg, expr.Terms, true)
	if err != nil {
		return err
	}

	if expr.Modifiers != "" && !isModifiers(expr.Modifiers) {
		return fmt.Errorf("%w: unknown modifiers '%s'", ErrInvalidAttribute, expr.Modifiers)
	}

	attr.Type = perf.Type(p.typ)
	attr.Config = cfg["config"]
	attr.Config1 = cfg["config1"]
	attr.Config2 = cfg["config2"]

	return nil
}
