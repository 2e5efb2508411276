package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirSink writes each output to a file below a root directory.
type DirSink struct {
	Root string
}

// Write implements Sink. Missing parent directories are created.
func (d DirSink) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := filepath.Join(d.Root, filepath.Clean("/"+path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", full, err)
	}
	return nil
}
