// Package detector finds source addresses with runs of consecutive failed logins.
package detector

import (
	"sort"

	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// DefaultThreshold is the number of consecutive failures that raises an alert.
const DefaultThreshold = 5

// Result holds per-address results ordered by address and alerts in the order they fired.
type Result struct {
	Results []types.DetectionResult
	Alerts  []types.Alert
}

// SortChronological sorts entries by timestamp in place. Entries with equal
// timestamps keep their input order.
func SortChronological(entries []types.LogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}

// Detect scans chronologically ordered entries. Each address has a streak counter,
// reset by any non-failed entry from that address, and a total-failure counter
// that never decreases. An alert fires when a streak reaches threshold exactly;
// once fired, AlertTriggered stays set for the address.
func Detect(entries []types.LogEntry, threshold int) Result {
	if threshold < 1 {
		threshold = DefaultThreshold
	}

	streaks := make(map[string]int)
	results := make(map[string]*types.DetectionResult)
	var alerts []types.Alert

	for _, e := range entries {
		ip := e.SourceIP

		if !e.Failed() {
			streaks[ip] = 0
			continue
		}

		streaks[ip]++

		r, ok := results[ip]
		if !ok {
			r = &types.DetectionResult{IP: ip, FirstFailure: e.Timestamp}
			results[ip] = r
		}
		r.TotalFailures++
		r.LastFailure = e.Timestamp
		if streaks[ip] > r.LongestStreak {
			r.LongestStreak = streaks[ip]
		}

		if streaks[ip] == threshold {
			r.AlertTriggered = true
			alerts = append(alerts, types.Alert{
				IP:        ip,
				Timestamp: e.Timestamp,
				Streak:    streaks[ip],
				Username:  e.Username,
			})
		}
	}

	out := make([]types.DetectionResult, 0, len(results))
	for _, r := range results {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].IP < out[j].IP
	})

	return Result{Results: out, Alerts: alerts}
}
