package notify

import (
	"context"
	"log/slog"

	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

const defaultRecipient = "admin@localhost"

// Log simulates an email notification by logging it. Nothing is sent.
type Log struct {
	recipient string
}

// NewLog creates a simulated email notifier.
func NewLog(recipient string) *Log {
	if recipient == "" {
		recipient = defaultRecipient
	}
	return &Log{recipient: recipient}
}

// Notify logs the email that would have been sent.
func (l *Log) Notify(_ context.Context, r types.DetectionResult) error {
	slog.Info("simulated email notification",
		"to", l.recipient,
		"subject", subject(r),
		"ip", r.IP,
		"failures", r.TotalFailures)
	return nil
}
