package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kestrelpatch/gitapply/batch"
)

// FilesystemCheckout writes an Index's blob content into files under a
// working directory root, restricted to the paths it is asked to
// materialize.
type FilesystemCheckout struct {
	root  string
	blobs *Blobs
}

// NewFilesystemCheckout returns a Checkout that writes into root,
// resolving blob content through blobs.
func NewFilesystemCheckout(root string, blobs *Blobs) *FilesystemCheckout {
	return &FilesystemCheckout{root: root, blobs: blobs}
}

// Checkout writes the content of index for each of paths into the
// working directory. It ignores flags.DontUpdateIndex, since this type
// never touches a persistent index itself; the caller decides
// separately whether to call Index.Write. flags.DisablePathspecMatch is
// always honored: paths are always treated literally, never as glob
// patterns, regardless of its value.
//
// flags.Safe refuses to clobber a destination that already exists and
// isn't in flags.KnownPaths: a path the orchestrator just read as this
// patch's own preimage (a pure in-place edit) is trusted and always
// overwritten, but a path new to the tree (added, renamed, copied, or
// type-changed) gets the same "don't overwrite an unrelated file"
// protection libgit2's checkout-safe applies to untracked paths.
func (c *FilesystemCheckout) Checkout(index batch.Index, paths []string, flags CheckoutFlags) error {
	for _, p := range paths {
		entry, ok := lookup(index, p)
		if !ok {
			return fmt.Errorf("storage: checkout: %s not found in index", p)
		}

		dest := filepath.Join(c.root, filepath.FromSlash(p))
		if flags.Safe && !flags.KnownPaths[p] {
			if _, err := os.Stat(dest); err == nil {
				// A prior checkout of the same path is fine; any other
				// pre-existing file is an unstaged change this
				// orchestrator refuses to clobber.
				if !c.isOwnContent(dest, entry.BlobID) {
					return fmt.Errorf("storage: checkout: %s exists with unstaged changes", p)
				}
			}
		}

		data, err := c.blobs.Read(entry.BlobID)
		if err != nil {
			return fmt.Errorf("storage: checkout: read blob for %s: %w", p, err)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("storage: checkout: create directory for %s: %w", p, err)
		}
		if err := os.WriteFile(dest, data, os.FileMode(entry.Mode&0o777)); err != nil {
			return fmt.Errorf("storage: checkout: write %s: %w", p, err)
		}
	}
	return nil
}

func (c *FilesystemCheckout) isOwnContent(dest, blobID string) bool {
	want, err := c.blobs.Read(blobID)
	if err != nil {
		return false
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		return false
	}
	return string(got) == string(want)
}

// lookup scans index linearly for path. Index implementations in this
// package are small enough (one working tree's worth of files) that this
// avoids requiring a lookup method on the batch.Index interface itself.
func lookup(index batch.Index, path string) (batch.IndexEntry, bool) {
	for i := 0; i < index.EntryCount(); i++ {
		e := index.GetByIndex(i)
		if e.Path == path {
			return e, true
		}
	}
	return batch.IndexEntry{}, false
}

// CheckoutFlags mirrors batch.CheckoutFlags; defined here too so callers
// that only import storage don't need to import batch for this type.
type CheckoutFlags = batch.CheckoutFlags
