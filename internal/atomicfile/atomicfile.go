// Package atomicfile publishes whole documents via a temp-file rename so that
// concurrent readers observe either the previous complete content or the new
// complete content, never a partial write.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Publish writes data to a temporary file in the same directory as path and
// renames it onto path. The rename is atomic on POSIX filesystems because the
// temp file lives in the same directory (same volume). If the temp write
// fails, the previous content of path is left untouched and the error is
// returned to the caller.
func Publish(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename onto %s: %w", path, err)
	}
	return nil
}
