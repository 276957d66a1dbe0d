package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kestrelpatch/gitapply/batch"
)

// WorkdirReader reads preimage content directly from files under a
// working directory root.
type WorkdirReader struct {
	root string
}

// NewWorkdirReader returns a reader rooted at root.
func NewWorkdirReader(root string) WorkdirReader {
	return WorkdirReader{root: root}
}

// Read returns the content of path relative to the reader's root.
func (r WorkdirReader) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", batch.ErrNotFound, path)
		}
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// IndexReader reads preimage content from an Index's staged blobs rather
// than the working tree, for applying a patch against a known tree
// snapshot (the index location) without touching the filesystem outside
// the blob store.
type IndexReader struct {
	index *Index
	blobs *Blobs
}

// NewIndexReader builds a reader that resolves paths through index and
// fetches their content from blobs.
func NewIndexReader(index *Index, blobs *Blobs) IndexReader {
	return IndexReader{index: index, blobs: blobs}
}

// Read returns the blob content an Index entry for path points to.
func (r IndexReader) Read(path string) ([]byte, error) {
	entry, ok := r.index.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", batch.ErrNotFound, path)
	}
	return r.blobs.Read(entry.BlobID)
}
