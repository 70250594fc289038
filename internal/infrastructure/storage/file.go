package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/casefolio/pkg/errors"
)

// FileBackend stores each key as <dir>/<key>.json. Writes go to a temp file
// in the same directory and are renamed into place.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.MissingParam("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageBackend, "failed to create storage directory").WithDetail(dir)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) Name() string { return "file" }

func (f *FileBackend) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", errors.InvalidParam("invalid storage key").WithDetail(key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "failed to read file").WithDetail(p)
	}
	return data, nil
}

func (f *FileBackend) Put(_ context.Context, key string, data []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "failed to create temp file").WithDetail(f.dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeStorage, "failed to write temp file").WithDetail(tmpName)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeStorage, "failed to sync temp file").WithDetail(tmpName)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "failed to close temp file").WithDetail(tmpName)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "failed to replace file").WithDetail(p)
	}
	return nil
}

func (f *FileBackend) Delete(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrCodeStorage, "failed to remove file").WithDetail(p)
	}
	return nil
}

// Ping checks that the directory still exists and is a directory.
func (f *FileBackend) Ping(context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageBackend, "storage directory unavailable").WithDetail(f.dir)
	}
	if !info.IsDir() {
		return errors.New(errors.ErrCodeStorageBackend, "storage path is not a directory").WithDetail(f.dir)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }

//Personal.AI order the ending
