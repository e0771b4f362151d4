package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"vsh/internal/core"
	"vsh/internal/server/storage"
	"vsh/internal/vfs"
)

// ImageResult describes an accepted VFS image.
type ImageResult struct {
	ID         string    `json:"id"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ImageService accepts ZIP images of virtual filesystems and hands out
// the immutable trees built from them. Trees are cached per image since
// sessions never mutate them.
type ImageService struct {
	store   storage.Store
	maxSize int64

	mu    sync.Mutex
	cache map[string]*core.Tree
}

func NewImageService(store storage.Store, maxSize int64) *ImageService {
	return &ImageService{
		store:   store,
		maxSize: maxSize,
		cache:   make(map[string]*core.Tree),
	}
}

// Upload validates and stores a ZIP image. The whole archive is read
// up front so that a malformed image is rejected before anything is
// written to the store.
func (s *ImageService) Upload(r io.Reader, size int64) (*ImageResult, error) {
	if size > s.maxSize {
		return nil, ErrImageTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrImageTooLarge
	}

	if err := vfs.ValidateImage(data); err != nil {
		return nil, err
	}
	tree, err := vfs.FromZipBytes(data)
	if err != nil {
		return nil, err
	}

	id, err := generateSecureToken(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image ID: %w", err)
	}

	written, err := s.store.Save(id, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	s.mu.Lock()
	s.cache[id] = tree
	s.mu.Unlock()

	slog.Info("image uploaded", "image_id", id, "size", written)

	return &ImageResult{
		ID:         id,
		Size:       written,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Tree returns the tree for an image, rebuilding it from the store when
// it is not cached (for instance after a restart).
func (s *ImageService) Tree(id string) (*core.Tree, error) {
	s.mu.Lock()
	tree, ok := s.cache[id]
	s.mu.Unlock()
	if ok {
		return tree, nil
	}

	data, err := s.store.Read(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	tree, err = vfs.FromZipBytes(data)
	if err != nil {
		// A stored image that no longer parses is unusable; drop it.
		if derr := s.store.Delete(id); derr != nil {
			slog.Error("failed to delete corrupt image", "image_id", id, "error", derr)
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[id] = tree
	s.mu.Unlock()
	return tree, nil
}
