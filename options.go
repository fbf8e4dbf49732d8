package perfmon

import (
	"log/slog"

	"github.com/dylandreimerink/perfmon/events"
)

// Option configures a Session or CounterSet.
type Option func(*options)

type options struct {
	encoder Encoder
	kernel  Kernel
	logger  *slog.Logger
	metrics Metrics
	plm     events.PLM
}

func newOptions(opts []Option) options {
	o := options{
		plm: events.PLM3,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.encoder == nil {
		o.encoder = events.NewEncoder()
	}
	if o.kernel == nil {
		o.kernel = NewKernel()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.metrics == nil {
		o.metrics = nopMetrics{}
	}

	return o
}

// WithEncoder replaces the default events.Encoder.
func WithEncoder(encoder Encoder) Option {
	return func(o *options) {
		o.encoder = encoder
	}
}

// WithKernel replaces the perf_event_open backed kernel, mostly useful for testing.
func WithKernel(kernel Kernel) Option {
	return func(o *options) {
		o.kernel = kernel
	}
}

// WithLogger sets the logger, by default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets a recorder which is notified of every result.
func WithMetrics(metrics Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithPrivilegeLevel sets the privilege levels at which events are counted. A Session derives it from its Config.
func WithPrivilegeLevel(plm events.PLM) Option {
	return func(o *options) {
		o.plm = plm
	}
}
