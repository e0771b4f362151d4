package vfs

import (
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"vsh/internal/core"
)

// FromFilesystem mirrors fsys, from its root down, into a new tree.
// Using billy rather than the os package directly lets tests build
// trees from an in-memory filesystem.
func FromFilesystem(fsys billy.Filesystem) (*core.Tree, error) {
	tree := core.NewTree()
	if err := fillDir(fsys, "/", tree.Root()); err != nil {
		return nil, err
	}
	return tree, nil
}

func fillDir(fsys billy.Filesystem, path string, dir *core.Dir) error {
	entries, err := fsys.ReadDir(path)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	for _, entry := range entries {
		childPath := fsys.Join(path, entry.Name())

		if entry.IsDir() {
			child, err := dir.AddDir(entry.Name())
			if err != nil {
				return err
			}
			if err := fillDir(fsys, childPath, child); err != nil {
				return err
			}
			continue
		}

		content, err := util.ReadFile(fsys, childPath)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", childPath, err)
		}
		if _, err := dir.AddFile(entry.Name(), content); err != nil {
			return err
		}
	}

	return nil
}
