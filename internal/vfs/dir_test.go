package vfs

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"vsh/internal/core"
)

func setupMemFS(t *testing.T, files map[string]string, dirs ...string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	for path, content := range files {
		if err := util.WriteFile(fsys, path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	for _, dir := range dirs {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	return fsys
}

func TestFromFilesystem(t *testing.T) {
	t.Run("mirrors a nested layout", func(t *testing.T) {
		fsys := setupMemFS(t, map[string]string{
			"config.txt":       "key=value",
			"dir_1/file_a.txt": "hello",
			"a/b/c/deep.txt":   "deep",
		})

		tree, err := FromFilesystem(fsys)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		file, ok := resolvePath(t, tree, "/dir_1/file_a.txt").(*core.File)
		if !ok {
			t.Fatal("expected a file at /dir_1/file_a.txt")
		}
		if string(file.Content()) != "hello" {
			t.Errorf("expected %q, got %q", "hello", file.Content())
		}

		deep := resolvePath(t, tree, "/a/b/c/deep.txt").(*core.File)
		if string(deep.Content()) != "deep" {
			t.Errorf("expected %q, got %q", "deep", deep.Content())
		}
	})

	t.Run("keeps empty directories", func(t *testing.T) {
		fsys := setupMemFS(t, map[string]string{"file.txt": "x"}, "empty")

		tree, err := FromFilesystem(fsys)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		dir, ok := resolvePath(t, tree, "/empty").(*core.Dir)
		if !ok {
			t.Fatal("expected /empty to be a directory")
		}
		if len(dir.Entries()) != 0 {
			t.Errorf("expected no entries, got %+v", dir.Entries())
		}
	})

	t.Run("empty filesystem yields an empty root", func(t *testing.T) {
		tree, err := FromFilesystem(memfs.New())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tree.Root().Entries()) != 0 {
			t.Errorf("expected empty root, got %+v", tree.Root().Entries())
		}
	})
}
