// Package events turns human readable event names into perf event attributes. It understands the generic names used
// by "perf stat -e" (cycles, instructions, L1-dcache-load-misses), the libpfm names of the perf_events PMU
// (PERF_COUNT_HW_CPU_CYCLES, PERF_COUNT_HW_CACHE_DTLB:MISS), raw events (r1a8), PMU events described in sysfs
// (cpu/event=0x3c,umask=0x0/) and tracepoints (sched:sched_switch).
//
// Privilege level modifiers can be appended to any event, cycles:u only counts user space for example.
package events
