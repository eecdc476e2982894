package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// JSON writes detection results as one JSON object per line.
type JSON struct {
	w io.Writer
}

// NewJSON creates a JSON lines reporter.
func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w}
}

// Report writes each result.
func (j *JSON) Report(ctx context.Context, a *types.Analysis) error {
	for _, r := range a.Results {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}

		if _, err := fmt.Fprintf(j.w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}
