package charts

import (
	"fmt"
	"sort"

	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// Count is the number of entries sharing a key.
type Count struct {
	Key   string
	Count int
}

// TopAddresses returns the n source addresses with the most attempts.
func TopAddresses(entries []types.LogEntry, n int) []Count {
	return top(entries, n, func(e types.LogEntry) string { return e.SourceIP })
}

// TopUsernames returns the n most targeted usernames. Entries without a username are ignored.
func TopUsernames(entries []types.LogEntry, n int) []Count {
	return top(entries, n, func(e types.LogEntry) string { return e.Username })
}

// AttemptsByHour counts attempts per hour of day. Only hours with attempts are
// returned, in ascending order, keyed "00" to "23".
func AttemptsByHour(entries []types.LogEntry) []Count {
	var hours [24]int
	for _, e := range entries {
		hours[e.Timestamp.Hour()]++
	}

	var out []Count
	for h, c := range hours {
		if c > 0 {
			out = append(out, Count{Key: fmt.Sprintf("%02d", h), Count: c})
		}
	}
	return out
}

// StatusDistribution counts Accepted then Failed attempts. Both keys are always present.
func StatusDistribution(entries []types.LogEntry) []Count {
	out := []Count{
		{Key: string(types.StatusAccepted)},
		{Key: string(types.StatusFailed)},
	}
	for _, e := range entries {
		switch e.Status {
		case types.StatusAccepted:
			out[0].Count++
		case types.StatusFailed:
			out[1].Count++
		}
	}
	return out
}

// top orders by count descending, then key ascending, and keeps at most n.
func top(entries []types.LogEntry, n int, key func(types.LogEntry) string) []Count {
	counts := make(map[string]int)
	for _, e := range entries {
		if k := key(e); k != "" {
			counts[k]++
		}
	}

	out := make([]Count, 0, len(counts))
	for k, c := range counts {
		out = append(out, Count{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
