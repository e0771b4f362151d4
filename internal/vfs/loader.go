// Package vfs materializes core trees from their on-disk
// representations: a plain directory mirrored as-is, or a ZIP image.
package vfs

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5/osfs"

	"vsh/internal/core"
)

// Load builds a tree from path. A directory is walked recursively; a
// regular file must be a ZIP image.
func Load(path string) (*core.Tree, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("vfs path %s: %w", path, err)
	}

	if info.IsDir() {
		return FromFilesystem(osfs.New(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vfs image %s: %w", path, err)
	}
	return FromZipBytes(data)
}
