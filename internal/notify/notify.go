// Package notify tells an administrator about each alerted address.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/jdwit/ssh-auth-analyzer/internal/config"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// Notifier sends one notification per alerted address.
type Notifier interface {
	Notify(ctx context.Context, r types.DetectionResult) error
}

// New creates the notifier named by name: "log" (default), "ses", "telegram" or "none".
func New(name string, opts config.Notify, sess *session.Session) (Notifier, error) {
	switch strings.TrimSpace(name) {
	case "", "log":
		return NewLog(opts.EmailTo), nil
	case "ses":
		return NewSES(opts, sess)
	case "telegram":
		return NewTelegram(opts)
	case "none":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", name)
	}
}

// Nop discards notifications.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, types.DetectionResult) error { return nil }

func subject(r types.DetectionResult) string {
	return "SSH brute-force alert: " + r.IP
}

func body(r types.DetectionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Address %s reached the consecutive failed login threshold.\n\n", r.IP)
	fmt.Fprintf(&b, "Total failed attempts: %d\n", r.TotalFailures)
	fmt.Fprintf(&b, "Longest streak: %d\n", r.LongestStreak)
	if !r.FirstFailure.IsZero() {
		fmt.Fprintf(&b, "First failure: %s\n", r.FirstFailure.Format(time.RFC3339))
		fmt.Fprintf(&b, "Last failure: %s\n", r.LastFailure.Format(time.RFC3339))
	}
	return b.String()
}

// requiredSetting returns value, or an error naming the setting by its environment key.
func requiredSetting(key, value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%s required", key)
	}
	return value, nil
}
