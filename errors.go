package perfmon

import (
	"errors"
	"fmt"
)

// Error kinds, use errors.Is to check which kind of failure occurred.
var (
	// ErrConfig is returned when no events are configured or the configuration is invalid
	ErrConfig = errors.New("configuration error")
	// ErrInit is returned when the encoder or kernel can't be initialized, or an operation is called out of order
	ErrInit = errors.New("initialization error")
	// ErrEncode is returned when an event name can't be encoded into a perf attribute
	ErrEncode = errors.New("error creating event")
	// ErrOpen is returned when perf_event_open fails
	ErrOpen = errors.New("error in perf_event_open")
	// ErrEnable is returned when a counter or the task counters can't be enabled or disabled
	ErrEnable = errors.New("error enabling counters")
	// ErrRead is returned when a counter read fails or is short
	ErrRead = errors.New("error reading event")
	// ErrContention is returned when the time enabled and running of a counter differ, meaning it was multiplexed
	ErrContention = errors.New("perf event counter was scaled")
	// ErrNoBegin is returned when End is called without a preceding Begin
	ErrNoBegin = errors.New("end called before begin")
)

// Error describes a failed counter operation. Kind is one of the Err* kinds of this package, Err is the cause.
type Error struct {
	Kind error
	// Op is the name of the failed operation, like "create" or "read"
	Op string
	// Index is the position of the event in the event list, -1 if the failure doesn't concern a single event
	Index int
	// Event is the name of the event, if Index is not -1
	Event string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}

	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}

	return fmt.Sprintf("%s: event %d '%s': %s", e.Op, e.Index, e.Event, msg)
}

// Unwrap returns both the kind and the cause so errors.Is works for either.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func opError(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Index: -1, Err: err}
}

func eventError(kind error, op string, index int, name string, err error) *Error {
	return &Error{Kind: kind, Op: op, Index: index, Event: name, Err: err}
}
