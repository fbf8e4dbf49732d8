package events

import (
	"sort"

	"github.com/dylandreimerink/perfmon/perf"
	"golang.org/x/sys/unix"
)

type eventBasic struct {
	typ    perf.Type
	config uint64
}

// generic holds all fixed name to type/config mappings. Keys are lower case, lookups are case insensitive.
var generic = map[string]eventBasic{
	// Hardware events, perf names
	"cycles":                  {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_CPU_CYCLES},
	"cpu-cycles":              {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_CPU_CYCLES},
	"instructions":            {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_INSTRUCTIONS},
	"cache-references":        {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_REFERENCES},
	"cache-misses":            {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_MISSES},
	"branches":                {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_BRANCH_INSTRUCTIONS},
	"branch-instructions":     {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_BRANCH_INSTRUCTIONS},
	"branch-misses":           {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_BRANCH_MISSES},
	"bus-cycles":              {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_BUS_CYCLES},
	"stalled-cycles-frontend": {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_STALLED_CYCLES_FRONTEND},
	"idle-cycles-frontend":    {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_STALLED_CYCLES_FRONTEND},
	"stalled-cycles-backend":  {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_STALLED_CYCLES_BACKEND},
	"idle-cycles-backend":     {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_STALLED_CYCLES_BACKEND},
	"ref-cycles":              {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_REF_CPU_CYCLES},

	// Hardware events, libpfm perf_events PMU names
	"perf_count_hw_cpu_cycles":              {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_CPU_CYCLES},
	"perf_count_hw_instructions":            {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_INSTRUCTIONS},
	"perf_count_hw_cache_references":        {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_REFERENCES},
	"perf_count_hw_cache_misses":            {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_MISSES},
	"perf_count_hw_branch_instructions":     {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_BRANCH_INSTRUCTIONS},
	"perf_count_hw_branch_misses":           {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_BRANCH_MISSES},
	"perf_count_hw_bus_cycles":              {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_BUS_CYCLES},
	"perf_count_hw_stalled_cycles_frontend": {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_STALLED_CYCLES_FRONTEND},
	"perf_count_hw_stalled_cycles_backend":  {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_STALLED_CYCLES_BACKEND},
	"perf_count_hw_ref_cpu_cycles":          {perf.TYPE_HARDWARE, unix.PERF_COUNT_HW_REF_CPU_CYCLES},

	// Software events, perf names
	"cpu-clock":        {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_CPU_CLOCK},
	"task-clock":       {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_TASK_CLOCK},
	"page-faults":      {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_PAGE_FAULTS},
	"faults":           {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_PAGE_FAULTS},
	"context-switches": {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_CONTEXT_SWITCHES},
	"cs":               {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_CONTEXT_SWITCHES},
	"cpu-migrations":   {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_CPU_MIGRATIONS},
	"migrations":       {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_CPU_MIGRATIONS},
	"minor-faults":     {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_PAGE_FAULTS_MIN},
	"major-faults":     {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_PAGE_FAULTS_MAJ},
	"alignment-faults": {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_ALIGNMENT_FAULTS},
	"emulation-faults": {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_EMULATION_FAULTS},
	"dummy":            {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_DUMMY},
	"bpf-output":       {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_BPF_OUTPUT},

	// Software events, libpfm perf_events PMU names
	"perf_count_sw_cpu_clock":        {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_CPU_CLOCK},
	"perf_count_sw_task_clock":       {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_TASK_CLOCK},
	"perf_count_sw_page_faults":      {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_PAGE_FAULTS},
	"perf_count_sw_context_switches": {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_CONTEXT_SWITCHES},
	"perf_count_sw_cpu_migrations":   {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_CPU_MIGRATIONS},
	"perf_count_sw_page_faults_min":  {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_PAGE_FAULTS_MIN},
	"perf_count_sw_page_faults_maj":  {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_PAGE_FAULTS_MAJ},
	"perf_count_sw_alignment_faults": {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_ALIGNMENT_FAULTS},
	"perf_count_sw_emulation_faults": {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_EMULATION_FAULTS},
	"perf_count_sw_dummy":            {perf.TYPE_SOFTWARE, unix.PERF_COUNT_SW_DUMMY},
}

// pfmCaches are the libpfm cache events, which take the op and result as umasks, PERF_COUNT_HW_CACHE_L1D:WRITE:MISS.
var pfmCaches = map[string]uint64{
	"perf_count_hw_cache_l1d":  unix.PERF_COUNT_HW_CACHE_L1D,
	"perf_count_hw_cache_l1i":  unix.PERF_COUNT_HW_CACHE_L1I,
	"perf_count_hw_cache_ll":   unix.PERF_COUNT_HW_CACHE_LL,
	"perf_count_hw_cache_dtlb": unix.PERF_COUNT_HW_CACHE_DTLB,
	"perf_count_hw_cache_itlb": unix.PERF_COUNT_HW_CACHE_ITLB,
	"perf_count_hw_cache_bpu":  unix.PERF_COUNT_HW_CACHE_BPU,
	"perf_count_hw_cache_node": unix.PERF_COUNT_HW_CACHE_NODE,
}

var cacheOps = map[string]uint64{
	"read":     unix.PERF_COUNT_HW_CACHE_OP_READ,
	"write":    unix.PERF_COUNT_HW_CACHE_OP_WRITE,
	"prefetch": unix.PERF_COUNT_HW_CACHE_OP_PREFETCH,
}

var cacheResults = map[string]uint64{
	"access": unix.PERF_COUNT_HW_CACHE_RESULT_ACCESS,
	"miss":   unix.PERF_COUNT_HW_CACHE_RESULT_MISS,
}

// cacheConfig encodes a TYPE_HW_CACHE config value.
func cacheConfig(level, op, result uint64) uint64 {
	return level | op<<8 | result<<16
}

func init() {
	// Generate the generic perf cache names like L1-dcache-load-misses and dTLB-stores
	levels := map[string]uint64{
		"l1-dcache": unix.PERF_COUNT_HW_CACHE_L1D,
		"l1-icache": unix.PERF_COUNT_HW_CACHE_L1I,
		"llc":       unix.PERF_COUNT_HW_CACHE_LL,
		"dtlb":      unix.PERF_COUNT_HW_CACHE_DTLB,
		"itlb":      unix.PERF_COUNT_HW_CACHE_ITLB,
		"branch":    unix.PERF_COUNT_HW_CACHE_BPU,
		"node":      unix.PERF_COUNT_HW_CACHE_NODE,
	}
	ops := []struct {
		name   string
		plural string
		op     uint64
	}{
		{"load", "loads", unix.PERF_COUNT_HW_CACHE_OP_READ},
		{"store", "stores", unix.PERF_COUNT_HW_CACHE_OP_WRITE},
		{"prefetch", "prefetches", unix.PERF_COUNT_HW_CACHE_OP_PREFETCH},
	}

	for levelName, level := range levels {
		for _, op := range ops {
			generic[levelName+"-"+op.plural] = eventBasic{
				typ:    perf.TYPE_HW_CACHE,
				config: cacheConfig(level, op.op, unix.PERF_COUNT_HW_CACHE_RESULT_ACCESS),
			}
			generic[levelName+"-"+op.name+"-misses"] = eventBasic{
				typ:    perf.TYPE_HW_CACHE,
				config: cacheConfig(level, op.op, unix.PERF_COUNT_HW_CACHE_RESULT_MISS),
			}
		}
	}
}

// Names returns all fixed event names the encoder knows, sorted. PMU events and tracepoints are not included since
// they depend on the system.
func Names() []string {
	names := make([]string, 0, len(generic)+len(pfmCaches))
	for name := range generic {
		names = append(names, name)
	}
	for name := range pfmCaches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
