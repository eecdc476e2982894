// Package outputs forwards alert events to external sinks.
package outputs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// Output receives alert events and sends them to a sink.
type Output interface {
	SendAlerts(ctx context.Context, alerts <-chan types.Alert)
}

// New creates outputs from a comma-separated configuration string.
func New(config string, sess *session.Session) ([]Output, error) {
	var result []Output

	for _, name := range strings.Split(config, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var o Output
		var err error

		switch name {
		case "cloudwatch":
			o, err = NewCloudWatch(sess)
		case "firehose":
			o, err = NewFirehose(sess)
		case "splunk":
			o, err = NewSplunk()
		case "stdout":
			o = NewStdout()
		default:
			slog.Warn("unknown output", "name", name)
			continue
		}

		if err != nil {
			slog.Warn("output init failed", "name", name, "error", err)
			continue
		}

		result = append(result, o)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("no valid outputs configured")
	}

	return result, nil
}

// alertEvent is the wire form shared by all sinks.
type alertEvent struct {
	Type      string `json:"type"`
	IP        string `json:"ip"`
	Username  string `json:"username,omitempty"`
	Streak    int    `json:"streak"`
	Timestamp string `json:"timestamp"`
}

func marshalAlert(a types.Alert) ([]byte, error) {
	return json.Marshal(alertEvent{
		Type:      "ssh_consecutive_failures",
		IP:        a.IP,
		Username:  a.Username,
		Streak:    a.Streak,
		Timestamp: a.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}
