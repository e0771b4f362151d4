package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store is the interface for persisted VFS image backends.
// This allows swapping the filesystem for object storage later.
type Store interface {
	Save(imageID string, data io.Reader) (int64, error)
	Read(imageID string) ([]byte, error)
	Delete(imageID string) error
	EnsureDir() error
}

// FileSystemStore keeps uploaded VFS images on the local filesystem.
type FileSystemStore struct {
	basePath string
}

// NewFileSystemStore creates a new filesystem storage backend.
func NewFileSystemStore(basePath string) *FileSystemStore {
	return &FileSystemStore{basePath: basePath}
}

// EnsureDir creates the storage directory if it doesn't exist.
func (fs *FileSystemStore) EnsureDir() error {
	if err := os.MkdirAll(fs.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create image directory %s: %w", fs.basePath, err)
	}
	return nil
}

// Save writes data to a file named {imageID}.zip and returns the
// number of bytes written.
func (fs *FileSystemStore) Save(imageID string, data io.Reader) (int64, error) {
	filePath := fs.imagePath(imageID)

	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create image file %s: %w", filePath, err)
	}
	defer file.Close()

	n, err := io.Copy(file, data)
	if err != nil {
		// Clean up the partial file on error
		os.Remove(filePath)
		return 0, fmt.Errorf("failed to write image: %w", err)
	}

	return n, nil
}

// Read returns the bytes of a stored image.
func (fs *FileSystemStore) Read(imageID string) ([]byte, error) {
	data, err := os.ReadFile(fs.imagePath(imageID))
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", imageID, err)
	}
	return data, nil
}

// Delete removes a stored image.
func (fs *FileSystemStore) Delete(imageID string) error {
	if err := os.Remove(fs.imagePath(imageID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image %s: %w", imageID, err)
	}
	return nil
}

func (fs *FileSystemStore) imagePath(imageID string) string {
	return filepath.Join(fs.basePath, imageID+".zip")
}
