package reports

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jdwit/ssh-auth-analyzer/internal/artifact"
	"github.com/jdwit/ssh-auth-analyzer/internal/parser"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// CSV dumps the parsed entries.
type CSV struct {
	path string
}

// NewCSV creates a CSV reporter writing to path.
func NewCSV(path string) (*CSV, error) {
	if path == "" {
		return nil, fmt.Errorf("CSV report path required")
	}
	return &CSV{path: path}, nil
}

// Report writes every parsed entry in chronological order.
func (c *CSV) Report(_ context.Context, a *types.Analysis) error {
	err := artifact.WriteFile(c.path, func(f *os.File) error {
		return parser.WriteCSV(f, a.Entries)
	})
	if err != nil {
		return err
	}
	slog.Info("csv written", "path", c.path, "entries", len(a.Entries))
	return nil
}
