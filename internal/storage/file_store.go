package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps each key in its own JSON file under a directory
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a FileStore over it
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory
func (fs *FileStore) Dir() string {
	return fs.dir
}

func (fs *FileStore) path(key string) string {
	return filepath.Join(fs.dir, key+".json")
}

// Get returns the blob stored under key
func (fs *FileStore) Get(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fs.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set writes the blob through a temp file and rename, so readers never see a partial file
func (fs *FileStore) Set(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	path := fs.path(key)
	temp, err := os.CreateTemp(fs.dir, key+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(temp.Name())

	if _, err := temp.Write(value); err != nil {
		temp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		return fmt.Errorf("failed to sync %s: %w", key, err)
	}
	if err := temp.Close(); err != nil {
		return err
	}

	if info, err := os.Stat(path); err == nil {
		if err := os.Chmod(temp.Name(), info.Mode()); err != nil {
			return err
		}
	}

	return os.Rename(temp.Name(), path)
}

// Remove deletes the file for key
func (fs *FileStore) Remove(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	err := os.Remove(fs.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
