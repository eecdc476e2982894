package types

import (
	"strings"
	"time"
)

// Status is the outcome of an sshd password authentication attempt.
type Status string

const (
	StatusAccepted Status = "Accepted"
	StatusFailed   Status = "Failed"
)

// ParseStatus maps a case-insensitive status token to a Status.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accepted":
		return StatusAccepted, true
	case "failed":
		return StatusFailed, true
	default:
		return "", false
	}
}

// LogEntry represents a parsed sshd authentication line.
type LogEntry struct {
	Timestamp    time.Time
	RawTimestamp string // timestamp as it appeared in the log, e.g. "Aug  6 10:15:30"
	Status       Status
	SourceIP     string
	Username     string // empty when the input did not carry one
}

// Failed reports whether the entry is a failed attempt.
func (e LogEntry) Failed() bool {
	return e.Status == StatusFailed
}
