package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// WriteFileAtomic replaces path with data. Readers see either the old or the new content,
// never a partial write.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create temp file"), "path", path)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "failed to write temp file"), "path", tmpPath)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "failed to sync temp file"), "path", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close temp file"), "path", tmpPath)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set file permissions"), "path", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to move file into place"), "path", path)
	}
	return nil
}
