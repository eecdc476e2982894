// Package artifact creates report and chart files under the output directory.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// EnsureDir creates dir and its parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w: %v", dir, types.ErrOutputNotWritable, err)
	}
	return nil
}

// Create creates or truncates the file at path, creating its parent directory.
func Create(path string) (*os.File, error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w: %v", path, types.ErrOutputNotWritable, err)
	}
	return f, nil
}

// WriteFile creates path and fills it with write. Any failure, including one
// returned by write, is reported as types.ErrOutputNotWritable.
func WriteFile(path string, write func(f *os.File) error) error {
	f, err := Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w: %v", path, types.ErrOutputNotWritable, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w: %v", path, types.ErrOutputNotWritable, err)
	}
	return nil
}
