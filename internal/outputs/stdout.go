package outputs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// Stdout writes alert events to standard output.
type Stdout struct {
	w io.Writer
}

// NewStdout creates a stdout output.
func NewStdout() *Stdout {
	return &Stdout{w: os.Stdout}
}

// SendAlerts writes each alert as JSON prefixed with its timestamp.
func (s *Stdout) SendAlerts(ctx context.Context, alerts <-chan types.Alert) {
	for {
		select {
		case <-ctx.Done():
			return
		case alert, ok := <-alerts:
			if !ok {
				return
			}

			data, err := marshalAlert(alert)
			if err != nil {
				slog.Error("marshal failed", "error", err)
				continue
			}

			fmt.Fprintf(s.w, "[%s] %s\n", alert.Timestamp.Format(time.RFC3339), data)
		}
	}
}
