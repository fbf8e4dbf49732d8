package perfmon

// Metrics receives the results of every measurement interval. Implementations must not retain the session.
type Metrics interface {
	// ResultRecorded is called once per event per End, value is UndefinedValue if undefined is true
	ResultRecorded(event string, value uint64, undefined bool)
	// CycleCompleted is called once per successful End, after all results are recorded
	CycleCompleted()
}

type nopMetrics struct{}

func (nopMetrics) ResultRecorded(string, uint64, bool) {}
func (nopMetrics) CycleCompleted()                     {}
