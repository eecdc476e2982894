package reports

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jdwit/ssh-auth-analyzer/internal/charts"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// Charts renders the login attempt charts into a directory.
type Charts struct {
	dir     string
	formats []string
}

// NewCharts creates a chart reporter. Empty formats select charts.DefaultFormats.
func NewCharts(dir string, formats []string) (*Charts, error) {
	if dir == "" {
		return nil, fmt.Errorf("chart directory required")
	}
	return &Charts{dir: dir, formats: formats}, nil
}

// Report renders every chart.
func (c *Charts) Report(_ context.Context, a *types.Analysis) error {
	written, err := charts.Render(a.Entries, c.dir, c.formats)
	if err != nil {
		return err
	}
	slog.Info("charts written", "dir", c.dir, "files", len(written))
	return nil
}
