package core

import (
	"fmt"
	"strings"
)

// Tree is the virtual filesystem a session navigates. It is built once
// by a loader and never mutated afterwards, so a single tree may be
// shared by any number of sessions without locking.
type Tree struct {
	root *Dir
}

// NewTree creates a tree with an empty root directory.
func NewTree() *Tree {
	return &Tree{
		root: &Dir{name: "/", path: "/", children: make(map[string]Node)},
	}
}

// Root returns the tree's root directory.
func (t *Tree) Root() *Dir {
	return t.root
}

// AddDir creates a child directory. It fails with ErrDuplicateEntry if
// the name is already taken; duplicate names in a source image are a
// construction failure, never silently merged.
func (d *Dir) AddDir(name string) (*Dir, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, exists := d.children[name]; exists {
		return nil, &PathError{Path: d.childPath(name), Err: ErrDuplicateEntry}
	}
	child := &Dir{
		name:     name,
		path:     d.childPath(name),
		children: make(map[string]Node),
		parent:   d,
	}
	d.children[name] = child
	return child, nil
}

// AddFile creates a child file with the given content.
func (d *Dir) AddFile(name string, content []byte) (*File, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, exists := d.children[name]; exists {
		return nil, &PathError{Path: d.childPath(name), Err: ErrDuplicateEntry}
	}
	child := &File{
		name:    name,
		path:    d.childPath(name),
		content: content,
		dir:     d,
	}
	d.children[name] = child
	return child, nil
}

func (d *Dir) childPath(name string) string {
	if d.parent == nil {
		return "/" + name
	}
	return d.path + "/" + name
}

func validateName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: bad node name %q", ErrInvalidImage, name)
	}
	return nil
}

// Resolve maps a textual path to a node. Paths with a leading "/"
// resolve from the root, everything else from cur; an empty path
// yields cur itself. Resolution walks segment by segment: every
// non-terminal segment must name a directory (ErrNotADirectory
// otherwise) and every segment must exist (ErrNotFound otherwise).
// There is no partial success and no "."/".." handling; segments
// match child names literally.
func (t *Tree) Resolve(cur *Dir, path string) (Node, error) {
	var node Node = cur
	if strings.HasPrefix(path, "/") {
		node = t.root
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		dir, ok := node.(*Dir)
		if !ok {
			return nil, &PathError{Path: path, Err: ErrNotADirectory}
		}
		child, ok := dir.Child(seg)
		if !ok {
			return nil, &PathError{Path: path, Err: ErrNotFound}
		}
		node = child
	}
	return node, nil
}
