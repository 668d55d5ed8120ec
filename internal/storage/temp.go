package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"graphichelper/internal/ids"
)

// TempStore drops uploads on local disk while an operation is in flight.
// Files are keyed by a generated id, never by the client filename, so two
// sessions uploading "a.png" at the same time cannot clobber each other.
type TempStore struct {
	dir string
}

func NewTempStore(dir string) (*TempStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &TempStore{dir: dir}, nil
}

// Save writes the upload and returns its key and absolute path. The original
// filename contributes only its extension.
func (t *TempStore) Save(r io.Reader, originalFilename string) (key string, path string, err error) {
	key = ids.New() + filepath.Ext(filepath.Base(originalFilename))
	path = filepath.Join(t.dir, key)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write temp file: %w", err)
	}
	return key, path, nil
}

func (t *TempStore) Remove(key string) error {
	err := os.Remove(filepath.Join(t.dir, filepath.Base(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SweepOlderThan deletes files whose mtime is older than maxAge and returns
// how many were removed. Run from the scheduler.
func (t *TempStore) SweepOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return 0, fmt.Errorf("read temp dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(t.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
