// Package integration contains tests which open real counters. They are only built with the perftests tag, the
// testsuite command runs them under different perf_event_paranoid levels.
package integration
