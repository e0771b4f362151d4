package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystemStore_Save(t *testing.T) {
	t.Run("saves image to disk", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		data := bytes.NewReader([]byte("zip bytes"))
		n, err := store.Save("img123", data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 9 {
			t.Errorf("expected 9 bytes written, got %d", n)
		}

		content, err := os.ReadFile(filepath.Join(dir, "img123.zip"))
		if err != nil {
			t.Fatalf("failed to read saved image: %v", err)
		}
		if string(content) != "zip bytes" {
			t.Errorf("expected 'zip bytes', got %q", content)
		}
	})
}

func TestFileSystemStore_Read(t *testing.T) {
	t.Run("reads back a saved image", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		if _, err := store.Save("img123", bytes.NewReader([]byte("payload"))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := store.Read("img123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "payload" {
			t.Errorf("expected 'payload', got %q", data)
		}
	})

	t.Run("missing image is an error", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())
		if _, err := store.Read("nope"); err == nil {
			t.Error("expected error for missing image")
		}
	})
}

func TestFileSystemStore_Delete(t *testing.T) {
	t.Run("removes the image", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		store.Save("img123", bytes.NewReader([]byte("x")))
		if err := store.Delete("img123"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "img123.zip")); !os.IsNotExist(err) {
			t.Error("image file still exists after delete")
		}
	})

	t.Run("deleting a missing image is not an error", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())
		if err := store.Delete("nope"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestFileSystemStore_EnsureDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "images")
	store := NewFileSystemStore(base)

	if err := store.EnsureDir(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory at %s, err=%v", base, err)
	}
}
