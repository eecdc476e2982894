package types

import "time"

// DetectionResult summarises the failures observed for one source address.
type DetectionResult struct {
	IP             string    `json:"ip"`
	TotalFailures  int       `json:"total_failures"`
	AlertTriggered bool      `json:"alert_triggered"`
	LongestStreak  int       `json:"longest_streak"`
	FirstFailure   time.Time `json:"first_failure"`
	LastFailure    time.Time `json:"last_failure"`
}

// Alert is raised each time an address's consecutive-failure streak reaches the threshold.
type Alert struct {
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
	Streak    int       `json:"streak"`
	Username  string    `json:"username,omitempty"`
}

// ParseStats counts what the parser saw.
type ParseStats struct {
	Lines   int `json:"lines"`
	Matched int `json:"matched"`
	Skipped int `json:"skipped"`
}

// Analysis is the complete outcome of one run over one input.
type Analysis struct {
	Source      string
	Entries     []LogEntry
	Results     []DetectionResult
	Alerts      []Alert
	Stats       ParseStats
	Threshold   int
	GeneratedAt time.Time
}

// Alerted returns the results with AlertTriggered set, in result order.
func (a *Analysis) Alerted() []DetectionResult {
	var out []DetectionResult
	for _, r := range a.Results {
		if r.AlertTriggered {
			out = append(out, r)
		}
	}
	return out
}

// TotalFailures sums failures over all addresses.
func (a *Analysis) TotalFailures() int {
	var n int
	for _, r := range a.Results {
		n += r.TotalFailures
	}
	return n
}
