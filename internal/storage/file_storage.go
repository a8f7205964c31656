// internal/storage/file_storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStorage writes files under BaseDir atomically.
type FileStorage struct {
	BaseDir string

	fileLocks sync.Map // path -> *sync.RWMutex
}

// NewFileStorage creates baseDir when missing.
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStorage{BaseDir: baseDir}, nil
}

func (fs *FileStorage) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := fs.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// Path returns the absolute location of filename.
func (fs *FileStorage) Path(filename string) string {
	return filepath.Join(fs.BaseDir, filename)
}

// SaveFile writes content through a temp file in the same directory and
// renames it over the target, so readers never see a partial file.
func (fs *FileStorage) SaveFile(filename string, content []byte) error {
	fullPath := fs.Path(filename)

	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tempPath, fullPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

// SaveJSON writes data as indented JSON.
func (fs *FileStorage) SaveJSON(filename string, data interface{}) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return fs.SaveFile(filename, content)
}

// LoadFile reads filename.
func (fs *FileStorage) LoadFile(filename string) ([]byte, error) {
	fullPath := fs.Path(filename)

	lock := fs.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return content, nil
}

// FileExists reports whether filename exists.
func (fs *FileStorage) FileExists(filename string) bool {
	_, err := os.Stat(fs.Path(filename))
	return err == nil
}
