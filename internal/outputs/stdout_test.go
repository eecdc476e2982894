package outputs

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jdwit/ssh-auth-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestStdout_SendAlerts(t *testing.T) {
	alerts := make(chan types.Alert, 2)

	alerts <- types.Alert{
		IP:        "203.0.113.7",
		Username:  "root",
		Streak:    5,
		Timestamp: time.Date(2024, time.November, 17, 12, 0, 0, 0, time.UTC),
	}
	alerts <- types.Alert{
		IP:        "198.51.100.3",
		Streak:    5,
		Timestamp: time.Date(2024, time.November, 17, 13, 0, 0, 0, time.UTC),
	}
	close(alerts)

	var buf bytes.Buffer
	out := &Stdout{w: &buf}
	out.SendAlerts(context.Background(), alerts)

	expectedOutput := strings.Join([]string{
		`[2024-11-17T12:00:00Z] {"type":"ssh_consecutive_failures","ip":"203.0.113.7","username":"root","streak":5,"timestamp":"2024-11-17T12:00:00Z"}`,
		`[2024-11-17T13:00:00Z] {"type":"ssh_consecutive_failures","ip":"198.51.100.3","streak":5,"timestamp":"2024-11-17T13:00:00Z"}`,
	}, "\n")

	assert.Equal(t, expectedOutput, strings.TrimSpace(buf.String()))
}
