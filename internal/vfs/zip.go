package vfs

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"vsh/internal/core"
)

// ValidateImage checks that data starts with a ZIP magic number.
func ValidateImage(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("%w: too short for a zip image", core.ErrInvalidImage)
	}
	// Local file header PK\x03\x04, or end-of-central-directory
	// PK\x05\x06 for an empty archive.
	if data[0] != 0x50 || data[1] != 0x4B {
		return fmt.Errorf("%w: missing zip signature", core.ErrInvalidImage)
	}
	if (data[2] != 0x03 || data[3] != 0x04) && (data[2] != 0x05 || data[3] != 0x06) {
		return fmt.Errorf("%w: missing zip signature", core.ErrInvalidImage)
	}
	return nil
}

// FromZipBytes expands a ZIP image into a new tree. Directories are
// created for explicit directory entries and implicitly for every
// file's parents. A duplicate entry, or a name used as both file and
// directory, fails construction.
func FromZipBytes(data []byte) (*core.Tree, error) {
	if err := ValidateImage(data); err != nil {
		return nil, err
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidImage, err)
	}

	tree := core.NewTree()
	for _, f := range reader.File {
		name := strings.Trim(f.Name, "/")
		if name == "" {
			continue
		}
		segments := strings.Split(name, "/")

		if f.FileInfo().IsDir() {
			if _, err := ensureDir(tree.Root(), segments); err != nil {
				return nil, err
			}
			continue
		}

		parent, err := ensureDir(tree.Root(), segments[:len(segments)-1])
		if err != nil {
			return nil, err
		}

		content, err := readZipEntry(f)
		if err != nil {
			return nil, err
		}
		if _, err := parent.AddFile(segments[len(segments)-1], content); err != nil {
			return nil, err
		}
	}

	return tree, nil
}

// ensureDir descends through segments, creating directories as needed.
// A segment already taken by a file is a construction failure.
func ensureDir(root *core.Dir, segments []string) (*core.Dir, error) {
	dir := root
	for _, seg := range segments {
		if child, ok := dir.Child(seg); ok {
			sub, ok := child.(*core.Dir)
			if !ok {
				return nil, fmt.Errorf("%w: %s is both a file and a directory",
					core.ErrInvalidImage, child.Path())
			}
			dir = sub
			continue
		}

		sub, err := dir.AddDir(seg)
		if err != nil {
			return nil, err
		}
		dir = sub
	}
	return dir, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip entry %s: %w", f.Name, err)
	}
	return content, nil
}
