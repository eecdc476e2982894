// Package reports renders an analysis to the console and to report files.
package reports

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// Reporter renders an analysis.
type Reporter interface {
	Report(ctx context.Context, a *types.Analysis) error
}

// Options carries the destinations reporters write to.
type Options struct {
	HTMLPath     string
	CSVPath      string
	ChartDir     string
	ChartFormats []string
	Stdout       io.Writer // defaults to os.Stdout
}

// New creates reporters from a comma-separated configuration string.
func New(config string, opts Options) ([]Reporter, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	var result []Reporter

	for _, name := range strings.Split(config, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var r Reporter
		var err error

		switch name {
		case "table":
			r = NewTable(opts.Stdout)
		case "summary":
			r = NewSummary(opts.Stdout)
		case "html":
			r, err = NewHTML(opts.HTMLPath)
		case "csv":
			r, err = NewCSV(opts.CSVPath)
		case "json":
			r = NewJSON(opts.Stdout)
		case "charts":
			r, err = NewCharts(opts.ChartDir, opts.ChartFormats)
		default:
			slog.Warn("unknown reporter", "name", name)
			continue
		}

		if err != nil {
			slog.Warn("reporter init failed", "name", name, "error", err)
			continue
		}

		result = append(result, r)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("no valid reporters configured")
	}

	return result, nil
}
