package batch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kestrelpatch/gitapply/patch"
)

// fakeReader serves preimage bytes from an in-memory map.
type fakeReader map[string][]byte

func (r fakeReader) Read(path string) ([]byte, error) {
	data, ok := r[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return data, nil
}

// fakeBlobs stores postimage bytes keyed by a counter, mimicking a
// content-addressed store without hashing.
type fakeBlobs struct {
	next int
	data map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{data: map[string][]byte{}}
}

func (b *fakeBlobs) Write(data []byte) (string, error) {
	id := fmt.Sprintf("blob-%d", b.next)
	b.next++
	b.data[id] = append([]byte(nil), data...)
	return id, nil
}

// fakeIndex is an ordered in-memory Index.
type fakeIndex struct {
	entries []IndexEntry
}

func (idx *fakeIndex) Add(entry IndexEntry) error {
	for i, e := range idx.entries {
		if e.Path == entry.Path {
			idx.entries[i] = entry
			return nil
		}
	}
	idx.entries = append(idx.entries, entry)
	return nil
}

func (idx *fakeIndex) Remove(path string) error {
	for i, e := range idx.entries {
		if e.Path == path {
			idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (idx *fakeIndex) EntryCount() int { return len(idx.entries) }

func (idx *fakeIndex) GetByIndex(i int) IndexEntry { return idx.entries[i] }

func (idx *fakeIndex) Write() error { return nil }

func (idx *fakeIndex) find(path string) (IndexEntry, bool) {
	for _, e := range idx.entries {
		if e.Path == path {
			return e, true
		}
	}
	return IndexEntry{}, false
}

// fakeCheckout records the paths and flags it was asked to check out.
type fakeCheckout struct {
	called bool
	paths  []string
	flags  CheckoutFlags
}

func (c *fakeCheckout) Checkout(_ Index, paths []string, flags CheckoutFlags) error {
	c.called = true
	c.paths = append([]string(nil), paths...)
	c.flags = flags
	return nil
}

// fakeDiff is a fixed, in-memory Diff.
type fakeDiff struct {
	deltas  []patch.Delta
	patches []*patch.Patch
}

func (d *fakeDiff) NumDeltas() int               { return len(d.deltas) }
func (d *fakeDiff) DeltaAt(i int) patch.Delta     { return d.deltas[i] }
func (d *fakeDiff) PatchFrom(i int) (*patch.Patch, error) {
	return d.patches[i], nil
}

func addDelta(path string, content []byte) (patch.Delta, *patch.Patch) {
	d := patch.Delta{
		Status:  patch.StatusAdded,
		NewFile: patch.FileRef{Path: path, Mode: patch.DefaultFileMode},
	}
	return d, &patch.Patch{Delta: d}
}

func TestApplyAddsNewFile(t *testing.T) {
	d, p := addDelta("new.txt", nil)
	diff := &fakeDiff{deltas: []patch.Delta{d}, patches: []*patch.Patch{p}}

	blobs := newFakeBlobs()
	idx := &fakeIndex{}
	repo := NewRepo(nil)

	err := repo.Apply(Options{
		Location: LocationIndex,
		Reader:   fakeReader{},
		Blobs:    blobs,
		Out:      idx,
	}, diff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, ok := idx.find("new.txt")
	if !ok {
		t.Fatal("expected new.txt staged in index")
	}
	if entry.Mode != patch.DefaultFileMode {
		t.Fatalf("got mode %o, want %o", entry.Mode, patch.DefaultFileMode)
	}
}

func TestApplyRenameRemovesOldPath(t *testing.T) {
	delta := patch.Delta{
		Status:  patch.StatusRenamed,
		OldFile: patch.FileRef{Path: "old.txt", Mode: patch.DefaultFileMode},
		NewFile: patch.FileRef{Path: "new.txt", Mode: patch.DefaultFileMode},
	}
	p := &patch.Patch{Delta: delta}
	diff := &fakeDiff{deltas: []patch.Delta{delta}, patches: []*patch.Patch{p}}

	idx := &fakeIndex{entries: []IndexEntry{{Path: "old.txt", Mode: patch.DefaultFileMode, BlobID: "blob-orig"}}}
	reader := fakeReader{"old.txt": []byte("hello\n")}
	blobs := newFakeBlobs()
	repo := NewRepo(nil)

	if err := repo.Apply(Options{
		Location: LocationIndex,
		Reader:   reader,
		Blobs:    blobs,
		Out:      idx,
	}, diff); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := idx.find("old.txt"); ok {
		t.Fatal("expected old.txt removed from index after rename")
	}
	if _, ok := idx.find("new.txt"); !ok {
		t.Fatal("expected new.txt staged after rename")
	}
}

func TestApplyCopyKeepsOldPath(t *testing.T) {
	delta := patch.Delta{
		Status:  patch.StatusCopied,
		OldFile: patch.FileRef{Path: "old.txt", Mode: patch.DefaultFileMode},
		NewFile: patch.FileRef{Path: "copy.txt", Mode: patch.DefaultFileMode},
	}
	p := &patch.Patch{Delta: delta}
	diff := &fakeDiff{deltas: []patch.Delta{delta}, patches: []*patch.Patch{p}}

	idx := &fakeIndex{entries: []IndexEntry{{Path: "old.txt", Mode: patch.DefaultFileMode, BlobID: "blob-orig"}}}
	reader := fakeReader{"old.txt": []byte("hello\n")}
	blobs := newFakeBlobs()
	repo := NewRepo(nil)

	if err := repo.Apply(Options{
		Location: LocationIndex,
		Reader:   reader,
		Blobs:    blobs,
		Out:      idx,
	}, diff); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := idx.find("old.txt"); !ok {
		t.Fatal("expected old.txt to survive a copy")
	}
	if _, ok := idx.find("copy.txt"); !ok {
		t.Fatal("expected copy.txt staged")
	}
}

func TestApplyDeletionRemovesEntry(t *testing.T) {
	delta := patch.Delta{
		Status:  patch.StatusDeleted,
		OldFile: patch.FileRef{Path: "gone.txt", Mode: patch.DefaultFileMode},
	}
	p := &patch.Patch{Delta: delta}
	diff := &fakeDiff{deltas: []patch.Delta{delta}, patches: []*patch.Patch{p}}

	idx := &fakeIndex{entries: []IndexEntry{{Path: "gone.txt", Mode: patch.DefaultFileMode, BlobID: "blob-orig"}}}
	reader := fakeReader{"gone.txt": []byte("bye\n")}
	blobs := newFakeBlobs()
	repo := NewRepo(nil)

	if err := repo.Apply(Options{
		Location: LocationIndex,
		Reader:   reader,
		Blobs:    blobs,
		Out:      idx,
	}, diff); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := idx.find("gone.txt"); ok {
		t.Fatal("expected gone.txt removed")
	}
}

func TestApplyAtomicOnFailure(t *testing.T) {
	okDelta, okPatch := addDelta("first.txt", nil)

	badDelta := patch.Delta{
		Status:  patch.StatusModified,
		OldFile: patch.FileRef{Path: "missing.txt"},
		NewFile: patch.FileRef{Path: "missing.txt", Mode: patch.DefaultFileMode},
	}
	badPatch := &patch.Patch{Delta: badDelta}

	diff := &fakeDiff{
		deltas:  []patch.Delta{okDelta, badDelta},
		patches: []*patch.Patch{okPatch, badPatch},
	}

	idx := &fakeIndex{}
	repo := NewRepo(nil)

	err := repo.Apply(Options{
		Location: LocationIndex,
		Reader:   fakeReader{}, // missing.txt is absent: Read fails
		Blobs:    newFakeBlobs(),
		Out:      idx,
	}, diff)
	if err == nil {
		t.Fatal("expected error from missing preimage")
	}
	if !errors.As(err, new(*Error)) {
		t.Fatalf("expected *batch.Error, got %T: %v", err, err)
	}

	if idx.EntryCount() != 0 {
		t.Fatalf("expected no entries staged after failure, got %d", idx.EntryCount())
	}
}

func TestApplyToTreeReturnsIndexWithoutCheckout(t *testing.T) {
	d, p := addDelta("new.txt", nil)
	diff := &fakeDiff{deltas: []patch.Delta{d}, patches: []*patch.Patch{p}}

	idx := &fakeIndex{}
	checkout := &fakeCheckout{}
	repo := NewRepo(nil)

	out, err := repo.ApplyToTree(Options{
		Location: LocationBoth, // ignored: ApplyToTree never checks out
		Reader:   fakeReader{},
		Blobs:    newFakeBlobs(),
		Out:      idx,
		Checkout: checkout,
	}, diff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checkout.called {
		t.Fatal("ApplyToTree must not invoke checkout: it has no working directory")
	}
	if out != Index(idx) {
		t.Fatal("expected ApplyToTree to return the staged postimage index")
	}
	if idx.EntryCount() != 1 {
		t.Fatalf("expected new.txt staged in the returned index, got %d entries", idx.EntryCount())
	}
}

func TestApplyModifyStagesHunkPostimage(t *testing.T) {
	// A single modify delta applied through the batch stages the hunk's
	// postimage as the path's new blob. Each delta in a batch reads its
	// preimage from the caller-supplied reader, not from blobs staged by
	// earlier deltas of the same batch, so successive edits to one file
	// belong in one patch with several hunks (applied in order by
	// patch.ApplyText), not in several deltas against the same path.
	hunk := patch.Hunk{
		NewStart:  1,
		LineStart: 0,
		LineCount: 2,
	}
	lines := []patch.Line{
		{Origin: patch.OriginContext, Content: "line1\n"},
		{Origin: patch.OriginAddition, Content: "line2\n"},
	}
	delta := patch.Delta{
		Status:  patch.StatusModified,
		OldFile: patch.FileRef{Path: "f.txt", Mode: patch.DefaultFileMode},
		NewFile: patch.FileRef{Path: "f.txt", Mode: patch.DefaultFileMode},
	}
	p := &patch.Patch{Delta: delta, Lines: lines, Hunks: []patch.Hunk{hunk}}
	diff := &fakeDiff{deltas: []patch.Delta{delta}, patches: []*patch.Patch{p}}

	idx := &fakeIndex{entries: []IndexEntry{{Path: "f.txt", Mode: patch.DefaultFileMode, BlobID: "blob-orig"}}}
	reader := fakeReader{"f.txt": []byte("line1\n")}
	blobs := newFakeBlobs()
	repo := NewRepo(nil)

	if err := repo.Apply(Options{
		Location: LocationIndex,
		Reader:   reader,
		Blobs:    blobs,
		Out:      idx,
	}, diff); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, ok := idx.find("f.txt")
	if !ok {
		t.Fatal("expected f.txt staged")
	}
	if got, want := string(blobs.data[entry.BlobID]), "line1\nline2\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestApplyWorkdirMarksInPlaceModifiesAsKnownPaths(t *testing.T) {
	// A pure in-place modify (old path == new path) was just read as this
	// patch's own preimage, so the checkout it drives must be told to
	// trust that path; an added file has no such prior claim and must not
	// be marked known.
	modified := patch.Delta{
		Status:  patch.StatusModified,
		OldFile: patch.FileRef{Path: "f.txt", Mode: patch.DefaultFileMode},
		NewFile: patch.FileRef{Path: "f.txt", Mode: patch.DefaultFileMode},
	}
	modifiedPatch := &patch.Patch{
		Delta: modified,
		Lines: []patch.Line{
			{Origin: patch.OriginContext, Content: "A\n"},
			{Origin: patch.OriginDeletion, Content: "B\n"},
			{Origin: patch.OriginAddition, Content: "B2\n"},
		},
		Hunks: []patch.Hunk{{NewStart: 1, LineStart: 0, LineCount: 3}},
	}

	added, addedPatch := addDelta("new.txt", nil)

	diff := &fakeDiff{
		deltas:  []patch.Delta{modified, added},
		patches: []*patch.Patch{modifiedPatch, addedPatch},
	}

	idx := &fakeIndex{entries: []IndexEntry{{Path: "f.txt", Mode: patch.DefaultFileMode, BlobID: "blob-orig"}}}
	reader := fakeReader{"f.txt": []byte("A\nB\n")}
	checkout := &fakeCheckout{}
	repo := NewRepo(nil)

	if err := repo.Apply(Options{
		Location: LocationWorkdir,
		Reader:   reader,
		Blobs:    newFakeBlobs(),
		Out:      idx,
		Checkout: checkout,
	}, diff); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !checkout.flags.Safe {
		t.Fatal("expected workdir checkout to request Safe")
	}
	if !checkout.flags.KnownPaths["f.txt"] {
		t.Fatal("expected in-place modify f.txt to be marked as a known path")
	}
	if checkout.flags.KnownPaths["new.txt"] {
		t.Fatal("expected added new.txt to not be marked as a known path")
	}
}
