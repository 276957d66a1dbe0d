// Package batch implements the Batch Orchestrator: it drives the patch
// package's per-file applier across every delta of a patch set, staging
// results in an in-memory index, then commits them to a repository index,
// a working directory, or both.
//
// The orchestrator itself never touches a filesystem or network; it only
// calls the collaborator interfaces declared in this file. See package
// storage for filesystem-backed implementations.
package batch

import (
	"errors"

	"github.com/kestrelpatch/gitapply/patch"
)

// ErrNotFound is returned by a ContentReader when the requested path does
// not exist. Orchestrator code never returns this error directly to
// callers; it is translated into an apply-specific error (per spec §4.7.4).
var ErrNotFound = errors.New("gitapply: path not found")

// ContentReader reads the preimage bytes of a path, either from a working
// tree or from an index snapshot.
type ContentReader interface {
	Read(path string) ([]byte, error)
}

// BlobWriter writes bytes to a content-addressed object store and returns
// an identifier for them.
type BlobWriter interface {
	Write(data []byte) (blobID string, err error)
}

// IndexEntry is one path's record in an Index: its file mode and the
// identifier of the blob holding its content.
type IndexEntry struct {
	Path   string
	Mode   uint32
	BlobID string
}

// Index is a mutable mapping from path to IndexEntry.
type Index interface {
	Add(entry IndexEntry) error
	Remove(path string) error
	EntryCount() int
	GetByIndex(i int) IndexEntry
	Write() error
}

// CheckoutFlags mirrors the flag set of libgit2's git_checkout_options
// relevant to patch application.
type CheckoutFlags struct {
	// Safe refuses to overwrite files with unstaged changes. This
	// orchestrator always sets it.
	Safe bool
	// DisablePathspecMatch treats Paths as literal paths, not patterns.
	// This orchestrator always sets it.
	DisablePathspecMatch bool
	// DontUpdateIndex checks out files without touching the
	// repository's persistent index. Set when Options.Location is
	// LocationWorkdir.
	DontUpdateIndex bool
	// KnownPaths holds paths this apply pass in-place-modified (old and
	// new path identical, status unchanged): their on-disk content was
	// just read as this patch's preimage, so Safe's unstaged-changes
	// guard is skipped for them. Every other affected path (added,
	// renamed, copied, type-changed) is a destination the checkout has
	// no prior claim on, so Safe still refuses to clobber a pre-existing
	// file there.
	KnownPaths map[string]bool
}

// Checkout writes the content of index, restricted to paths, into a
// working directory.
type Checkout interface {
	Checkout(index Index, paths []string, flags CheckoutFlags) error
}

// Diff is the patch source: it produces Patch records indexed within a
// diff, without re-parsing unified diff text (see package patchsource for
// a JSON-backed implementation).
type Diff interface {
	NumDeltas() int
	DeltaAt(i int) patch.Delta
	PatchFrom(i int) (*patch.Patch, error)
}
