package core

import "sort"

// Node is a single entry in the virtual filesystem: either a *Dir or a *File.
type Node interface {
	Name() string
	Path() string
	IsDir() bool
}

// File is a leaf node with immutable content.
type File struct {
	name    string
	path    string
	content []byte
	dir     *Dir // parent, non-owning back-reference
}

func (f *File) Name() string { return f.name }
func (f *File) Path() string { return f.path }
func (f *File) IsDir() bool  { return false }

// Content returns the file's bytes. Callers must not modify the slice.
func (f *File) Content() []byte {
	return f.content
}

// Dir is an interior node. Child names are unique within a directory;
// the constructors in tree.go enforce that.
type Dir struct {
	name     string
	path     string
	children map[string]Node
	parent   *Dir // nil for the root, non-owning back-reference
}

func (d *Dir) Name() string { return d.name }
func (d *Dir) Path() string { return d.path }
func (d *Dir) IsDir() bool  { return true }

// Child looks up a direct child by name.
func (d *Dir) Child(name string) (Node, bool) {
	n, ok := d.children[name]
	return n, ok
}

// Entry is one row of a directory listing.
type Entry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

// Entries returns the directory's children in lexicographic order.
func (d *Dir) Entries() []Entry {
	entries := make([]Entry, 0, len(d.children))
	for name, child := range d.children {
		entries = append(entries, Entry{Name: name, IsDir: child.IsDir()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}
