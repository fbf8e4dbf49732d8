// Package perfmon measures the hardware and software performance counters of the calling process over an interval.
//
// A Session is prepared once, after which every Begin/End pair produces one Result per configured event containing
// the number of events counted between the two calls:
//
//	cfg, err := perfmon.LoadConfig() // reads PERF_EVENTS=cycles,instructions
//	// ...
//	session := perfmon.NewSession(cfg)
//	err = session.Prepare()
//	// ...
//	err = session.Begin()
//	// measured code
//	results, err := session.End()
//
// Counters are opened for the calling process on any CPU and are inherited by child processes. Counters which are
// multiplexed by the kernel are rejected instead of scaled, so only request as many events as the PMU can count at
// the same time.
//
// The C API in cmd/libperfmon exposes the same lifecycle to non-Go hosts.
package perfmon
