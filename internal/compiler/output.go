package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/udisondev/lvlc/internal/model"
)

// OutputPath returns the sibling artifact path for src: same directory,
// same base name, extension replaced by ext.
func OutputPath(src, ext string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ext
}

// WriteAtomic writes data to path through a temp file in the same directory
// followed by a rename. On any failure path is left as it was.
func WriteAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %v", model.ErrIOFailure, dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: writing %s: %v", model.ErrIOFailure, tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: syncing %s: %v", model.ErrIOFailure, tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", model.ErrIOFailure, tmpName, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", model.ErrIOFailure, tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: renaming to %s: %v", model.ErrIOFailure, path, err)
	}
	return nil
}
