// Package perf contains logic to interact with the linux perf subsystem for counting events. It provides the go
// version of the perf_event_attr ABI, a handle type for opened perf events and the task wide enable/disable
// directives. Mapping human readable event names to attributes is not done here, see the events package.
package perf
