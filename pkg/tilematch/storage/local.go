package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// LocalStore implements Store using the local file system.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
// An empty root resolves names against the working directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open opens a file for reading.
func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.root, name))
}

// Put copies localPath to name, creating parent directories. The copy is
// written to a temporary file and renamed into place, so an existing file
// at name is replaced whole or not at all. Putting a file onto itself is
// a no-op.
func (s *LocalStore) Put(_ context.Context, name, localPath string) (err error) {
	dst := filepath.Join(s.root, name)

	srcInfo, err := os.Stat(localPath)
	if err != nil {
		return err
	}
	dstInfo, err := os.Stat(dst)
	switch {
	case err == nil && os.SameFile(srcInfo, dstInfo):
		return nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".put-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, srcInfo.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmpPath, dst)
}
