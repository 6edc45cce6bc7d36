package source

import (
	"fmt"
	"path/filepath"

	"fortio.org/safecast"
)

// FileTable maps FileIDs to the paths of the front-end sources a module
// was produced from. Snapshots carry paths only, never file contents, so
// the table is all the span machinery needs to print useful locations.
type FileTable struct {
	paths []string
	index map[string]FileID // normalized path -> id
}

func NewFileTable() *FileTable {
	return &FileTable{
		paths: make([]string, 0),
		index: make(map[string]FileID),
	}
}

// Add registers a path and returns its new FileID. Registering the same
// path twice keeps both entries but points the index at the latest one.
func (t *FileTable) Add(path string) FileID {
	normalized := normalizePath(path)

	lenPaths, err := safecast.Conv[uint32](len(t.paths))
	if err != nil {
		panic(fmt.Errorf("file table overflow: %w", err))
	}
	id := FileID(lenPaths)
	t.paths = append(t.paths, normalized)
	t.index[normalized] = id
	return id
}

// Path returns the registered path for id.
func (t *FileTable) Path(id FileID) (string, bool) {
	if int(id) >= len(t.paths) {
		return "", false
	}
	return t.paths[id], true
}

// Lookup returns the latest FileID registered for path.
func (t *FileTable) Lookup(path string) (FileID, bool) {
	id, ok := t.index[normalizePath(path)]
	return id, ok
}

func (t *FileTable) Len() int {
	return len(t.paths)
}

// Snapshot returns the paths in ID order. The slice is shared with the
// table and must not be mutated by the caller.
func (t *FileTable) Snapshot() []string {
	return t.paths
}

// RestoreFileTable rebuilds a table from a snapshot produced by Snapshot.
func RestoreFileTable(paths []string) *FileTable {
	t := NewFileTable()
	for _, p := range paths {
		t.Add(p)
	}
	return t
}

func normalizePath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
