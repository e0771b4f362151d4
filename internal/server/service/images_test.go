package service

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"vsh/internal/core"
	"vsh/internal/server/storage"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestImageUploadAndTree(t *testing.T) {
	store := storage.NewFileSystemStore(t.TempDir())
	svc := NewImageService(store, 1<<20)

	data := buildZip(t, map[string]string{
		"notes/todo.txt": "ship it",
	})

	result, err := svc.Upload(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if result.ID == "" {
		t.Fatal("Upload() returned empty image ID")
	}
	if result.Size != int64(len(data)) {
		t.Errorf("stored size = %d, want %d", result.Size, len(data))
	}

	tree, err := svc.Tree(result.ID)
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}
	node, err := tree.Resolve(tree.Root(), "/notes/todo.txt")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	file, ok := node.(*core.File)
	if !ok {
		t.Fatalf("resolved node is %T, want *core.File", node)
	}
	if got := string(file.Content()); got != "ship it" {
		t.Errorf("file content = %q, want %q", got, "ship it")
	}
}

func TestImageTreeRebuiltFromStore(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewFileSystemStore(dir)
	svc := NewImageService(store, 1<<20)

	data := buildZip(t, map[string]string{"a.txt": "a"})
	result, err := svc.Upload(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	// A fresh service with an empty cache must rebuild from disk.
	fresh := NewImageService(storage.NewFileSystemStore(dir), 1<<20)
	if _, err := fresh.Tree(result.ID); err != nil {
		t.Fatalf("Tree() from store error = %v", err)
	}
}

func TestImageUploadRejections(t *testing.T) {
	store := storage.NewFileSystemStore(t.TempDir())
	svc := NewImageService(store, 16)

	t.Run("too large", func(t *testing.T) {
		data := buildZip(t, map[string]string{"a.txt": "a"})
		if _, err := svc.Upload(bytes.NewReader(data), int64(len(data))); !errors.Is(err, ErrImageTooLarge) {
			t.Errorf("Upload() error = %v, want ErrImageTooLarge", err)
		}
	})

	t.Run("not a zip", func(t *testing.T) {
		data := []byte("plain text")
		if _, err := svc.Upload(bytes.NewReader(data), int64(len(data))); !errors.Is(err, core.ErrInvalidImage) {
			t.Errorf("Upload() error = %v, want ErrInvalidImage", err)
		}
	})

	t.Run("unknown image", func(t *testing.T) {
		if _, err := svc.Tree("nope"); !errors.Is(err, ErrImageNotFound) {
			t.Errorf("Tree() error = %v, want ErrImageNotFound", err)
		}
	})
}
