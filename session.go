package perfmon

import (
	"errors"
	"log/slog"
)

var errAlreadyPrepared = errors.New("already prepared")

// Session measures the configured events over Begin/End intervals. It is not safe for concurrent use.
type Session struct {
	cfg  Config
	opts []Option
	log  *slog.Logger
	mtr  Metrics

	set     *CounterSet
	initial []Snapshot
	final   []Snapshot
	results []Result
	begun   bool
}

// NewSession creates a session, no counters are opened until Prepare is called.
func NewSession(cfg Config, opts ...Option) *Session {
	o := newOptions(opts)
	return &Session{
		cfg:  cfg,
		opts: opts,
		log:  o.logger,
		mtr:  o.metrics,
	}
}

// Prepare opens and enables a counter for every configured event. It can only be called once.
func (s *Session) Prepare() error {
	if s.set != nil {
		return opError(ErrInit, "prepare", errAlreadyPrepared)
	}

	names, err := s.cfg.EventNames()
	if err != nil {
		return err
	}

	plm, err := s.cfg.PLM()
	if err != nil {
		return err
	}

	set := NewCounterSet(names, append([]Option{WithPrivilegeLevel(plm)}, s.opts...)...)
	if err = set.Initialize(); err != nil {
		return err
	}
	if err = set.CreateAll(); err != nil {
		return errors.Join(err, set.Close())
	}
	if err = set.Enable(); err != nil {
		return errors.Join(err, set.Close())
	}

	s.set = set
	s.initial = make([]Snapshot, set.Len())
	s.final = make([]Snapshot, set.Len())

	s.log.Info("prepared counters", "events", names, "privilege_level", s.cfg.PrivilegeLevel)

	return nil
}

// Begin snapshots all counters, marking the start of an interval. Calling it again restarts the interval.
func (s *Session) Begin() error {
	if s.set == nil {
		return opError(ErrInit, "begin", errNotInitialized)
	}

	// A partial read leaves initial mixed between two intervals, End must not use it
	s.begun = false
	if err := s.set.ReadAll(s.initial); err != nil {
		return err
	}
	s.begun = true

	return nil
}

// End snapshots all counters and appends one result per event to the results of previous intervals. The returned
// slice is owned by the session and valid until the next End or Reset.
func (s *Session) End() ([]Result, error) {
	if s.set == nil {
		return nil, opError(ErrInit, "end", errNotInitialized)
	}
	if !s.begun {
		return nil, opError(ErrNoBegin, "end", nil)
	}

	if err := s.set.ReadAll(s.final); err != nil {
		return nil, err
	}

	for i, desc := range s.set.Descriptors() {
		delta := s.final[i].Sub(s.initial[i])
		if delta.Undefined() {
			s.log.Warn("undefined delta",
				"event", desc.Name,
				"initial", s.initial[i],
				"final", s.final[i],
			)
		}

		s.results = append(s.results, Result{Name: desc.Name, Value: delta.Uint64()})
		s.mtr.ResultRecorded(desc.Name, delta.Uint64(), delta.Undefined())
	}
	s.mtr.CycleCompleted()

	return s.results, nil
}

// Reset discards the results of all previous intervals. It is never called implicitly.
func (s *Session) Reset() {
	s.results = s.results[:0]
}

// Results returns the accumulated results without reading the counters.
func (s *Session) Results() []Result {
	return s.results
}

// Events returns the descriptors of the prepared events, nil before Prepare.
func (s *Session) Events() []Descriptor {
	if s.set == nil {
		return nil
	}
	return s.set.Descriptors()
}

// Close releases all counters.
func (s *Session) Close() error {
	if s.set == nil {
		return nil
	}

	err := s.set.Close()
	s.set = nil
	s.begun = false
	return err
}
