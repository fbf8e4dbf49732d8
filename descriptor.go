package perfmon

import (
	"strings"

	"github.com/dylandreimerink/perfmon/perf"
)

// DefaultDelimiter separates the event names in PERF_EVENTS
const DefaultDelimiter = ","

// Descriptor names one counter. Its index in a CounterSet correlates it with the counter handle and snapshots.
type Descriptor struct {
	Name string
	// Attr is the encoded configuration, it is the zero value until the counter is created
	Attr perf.Attr
}

// ParseEventList splits a delimited list of event names. Empty tokens are discarded, the order is preserved and
// duplicates are kept, every name results in its own counter.
func ParseEventList(list, delim string) ([]string, error) {
	if delim == "" {
		delim = DefaultDelimiter
	}

	var names []string
	for _, token := range strings.Split(list, delim) {
		token = strings.TrimSpace(token)
		if token != "" {
			names = append(names, token)
		}
	}

	if len(names) == 0 {
		return nil, opError(ErrConfig, "parse events", errNoEvents)
	}

	return names, nil
}
