// Package fsops provides the filesystem operations layerctl needs for
// document snapshots and its config file.
//
// Writes go through AtomicWrite (temp file + rename) so a crash never leaves
// a half-written document behind for the host backend to load.
package fsops

import (
	"fmt"
	"os"
	"path/filepath"
)

// FS is the filesystem surface of the document store and config writer.
type FS interface {
	// AtomicWrite replaces path with data in one rename.
	AtomicWrite(path string, data []byte, perm os.FileMode) error
	ReadFile(path string) ([]byte, error)
	Exists(path string) (bool, error)
}

// RealFS implements FS on the OS filesystem.
type RealFS struct{}

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

// AtomicWrite stages data in a hidden sibling of path and renames it into
// place, creating parent directories as needed. A file being replaced keeps
// its mode; perm applies to new files only.
func (fs *RealFS) AtomicWrite(path string, data []byte, perm os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", base, err)
	}
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	staged, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", base, err)
	}
	stagedPath := staged.Name()
	defer func() {
		if err != nil {
			_ = staged.Close()
			_ = os.Remove(stagedPath)
		}
	}()

	if _, err = staged.Write(data); err != nil {
		return fmt.Errorf("failed to stage %s: %w", base, err)
	}
	if err = staged.Sync(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", base, err)
	}
	if err = staged.Close(); err != nil {
		return fmt.Errorf("failed to stage %s: %w", base, err)
	}
	if err = os.Chmod(stagedPath, perm); err != nil {
		return fmt.Errorf("failed to set mode of %s: %w", base, err)
	}
	if err = os.Rename(stagedPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", base, err)
	}
	return nil
}

func (fs *RealFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Exists reports whether path exists without following a final symlink.
func (fs *RealFS) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}
