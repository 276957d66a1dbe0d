package storage

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/kestrelpatch/gitapply/batch"
)

// indexFile is the on-disk TOML representation of an Index: a flat list
// of entries, written in path order for stable diffs between revisions.
type indexFile struct {
	Entry []indexFileEntry `toml:"entry"`
}

type indexFileEntry struct {
	Path   string `toml:"path"`
	Mode   uint32 `toml:"mode"`
	BlobID string `toml:"blob_id"`
}

// Index is an in-memory, path-keyed batch.Index backed by a TOML file.
// Entries persist only when Write is called; mutations before that are
// visible to readers of the Index but not on disk, matching the batch
// orchestrator's expectation that a failed apply never touches committed
// state.
type Index struct {
	path    string
	entries map[string]batch.IndexEntry
	order   []string
}

// LoadIndex reads an Index from path. A missing file yields an empty
// Index that will be created the first time Write is called.
func LoadIndex(path string) (*Index, error) {
	idx := &Index{path: path, entries: map[string]batch.IndexEntry{}}

	var f indexFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("storage: load index: %w", err)
	}
	for _, e := range f.Entry {
		idx.entries[e.Path] = batch.IndexEntry{Path: e.Path, Mode: e.Mode, BlobID: e.BlobID}
		idx.order = append(idx.order, e.Path)
	}
	return idx, nil
}

// Add stages or replaces an entry.
func (idx *Index) Add(entry batch.IndexEntry) error {
	if _, exists := idx.entries[entry.Path]; !exists {
		idx.order = append(idx.order, entry.Path)
	}
	idx.entries[entry.Path] = entry
	return nil
}

// Remove drops an entry. Removing a path that is not present is not an
// error: callers (notably the batch orchestrator's rename pre-pass) may
// remove paths speculatively.
func (idx *Index) Remove(path string) error {
	if _, exists := idx.entries[path]; !exists {
		return nil
	}
	delete(idx.entries, path)
	for i, p := range idx.order {
		if p == path {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
	return nil
}

// EntryCount returns the number of staged entries.
func (idx *Index) EntryCount() int {
	return len(idx.order)
}

// GetByIndex returns the entry at position i in insertion order: entries
// loaded from the backing file come first, in the file's order, followed
// by paths added since.
func (idx *Index) GetByIndex(i int) batch.IndexEntry {
	return idx.entries[idx.order[i]]
}

// Write persists the index to its backing file in sorted path order.
func (idx *Index) Write() error {
	sorted := append([]string(nil), idx.order...)
	sort.Strings(sorted)

	f := indexFile{Entry: make([]indexFileEntry, 0, len(sorted))}
	for _, p := range sorted {
		e := idx.entries[p]
		f.Entry = append(f.Entry, indexFileEntry{Path: e.Path, Mode: e.Mode, BlobID: e.BlobID})
	}

	out, err := os.Create(idx.path)
	if err != nil {
		return fmt.Errorf("storage: create index file: %w", err)
	}
	defer out.Close()

	if err := toml.NewEncoder(out).Encode(f); err != nil {
		return fmt.Errorf("storage: encode index: %w", err)
	}
	return nil
}

// Get returns the entry for path, if staged.
func (idx *Index) Get(path string) (batch.IndexEntry, bool) {
	e, ok := idx.entries[path]
	return e, ok
}
