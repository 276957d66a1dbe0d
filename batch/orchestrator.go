package batch

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/kestrelpatch/gitapply/delta"
	"github.com/kestrelpatch/gitapply/inflate"
	"github.com/kestrelpatch/gitapply/patch"
)

// Repo wires the collaborators an orchestrator needs beyond what Options
// supplies directly: the binary decompression and delta-application
// primitives, and a logger. Its zero value is unusable; construct one
// with NewRepo.
type Repo struct {
	Inflater     patch.Inflater
	DeltaApplier patch.DeltaApplier
	Log          *logrus.Logger
}

// NewRepo builds a Repo with the default binary collaborators (raw zlib
// inflation and git pack-delta application). Pass nil for log to get a
// logger that discards output.
func NewRepo(log *logrus.Logger) *Repo {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Repo{
		Inflater:     inflate.Zlib{},
		DeltaApplier: delta.Applier{},
		Log:          log,
	}
}

// fileResult is the staged outcome of applying one delta, held in memory
// until every delta in a batch has succeeded.
type fileResult struct {
	delta  patch.Delta
	path   string
	mode   uint32
	blobID string
	delete bool
}

// ApplyOne applies a single patch against source content read through
// reader (nil source for additions) and writes its postimage through
// blobs. It performs no index bookkeeping; callers that want staged,
// atomic multi-file application should use Apply instead.
func (r *Repo) ApplyOne(reader ContentReader, blobs BlobWriter, p *patch.Patch) (path string, mode uint32, blobID string, err error) {
	var source []byte
	if p.Delta.Status != patch.StatusAdded {
		source, err = reader.Read(p.Delta.OldFile.Path)
		if errors.Is(err, ErrNotFound) {
			return "", 0, "", fmt.Errorf("apply: preimage %s does not exist: %w", p.Delta.OldFile.Path, err)
		}
		if err != nil {
			return "", 0, "", err
		}
	}

	out, path, mode, err := patch.ApplyFile(source, p, r.Inflater, r.DeltaApplier)
	if err != nil {
		return "", 0, "", err
	}

	if p.Delta.Status == patch.StatusDeleted {
		return "", 0, "", nil
	}

	blobID, err = blobs.Write(out)
	if err != nil {
		return "", 0, "", fmt.Errorf("write blob for %s: %w", path, err)
	}
	return path, mode, blobID, nil
}

// applyCore runs the two-pass apply (§4.7 steps 3-4) against opts.Out: the
// pre-pass removal of stale old paths, then the per-delta apply pass that
// stages new entries. It performs no checkout and no index persistence; it
// returns the new paths it staged, in delta order, plus the subset of
// those that are pure in-place edits (old path == new path, not added,
// renamed, copied, or type-changed) whose on-disk content a workdir
// checkout may trust as this patch's own preimage. The returned paths do
// not include the paths of deleted deltas or the old path of a rename, so
// a checkout driven by them never removes those files from a working
// directory. Out is left untouched if any delta fails.
func (r *Repo) applyCore(opts Options, diff Diff) (affected []string, knownPaths map[string]bool, err error) {
	n := diff.NumDeltas()
	results := make([]fileResult, 0, n)

	for i := 0; i < n; i++ {
		d := diff.DeltaAt(i)
		p, err := diff.PatchFrom(i)
		if err != nil {
			return nil, nil, deltaError(i, displayPath(d), err)
		}

		res := fileResult{delta: d}
		if d.Status == patch.StatusDeleted {
			res.delete = true
		} else {
			path, mode, blobID, err := r.ApplyOne(opts.Reader, opts.Blobs, p)
			if err != nil {
				r.Log.WithFields(logrus.Fields{
					"index": i,
					"path":  displayPath(d),
				}).WithError(err).Debug("delta failed to apply")
				return nil, nil, deltaError(i, displayPath(d), err)
			}
			res.path, res.mode, res.blobID = path, mode, blobID
		}
		results = append(results, res)
	}

	// Pre-pass: remove every old path made stale by this diff before
	// staging new entries, so a rename or modify-with-rename doesn't
	// leave its source path behind. Copies keep their source path: the
	// old side of a copy is untouched content, not something this diff
	// is retiring.
	for i, res := range results {
		if res.delta.Status == patch.StatusCopied {
			continue
		}
		oldPath := res.delta.OldFile.Path
		if oldPath == "" {
			continue
		}
		newPath := res.delta.NewFile.Path
		if res.delta.Status == patch.StatusRenamed || res.delta.Status == patch.StatusDeleted || (res.delta.Status == patch.StatusModified && newPath != "" && newPath != oldPath) {
			if err := opts.Out.Remove(oldPath); err != nil {
				return nil, nil, deltaError(i, oldPath, fmt.Errorf("pre-pass remove: %w", err))
			}
		}
	}

	affected = make([]string, 0, len(results))
	knownPaths = make(map[string]bool, len(results))
	for i, res := range results {
		if res.delete {
			continue
		}
		if err := opts.Out.Add(IndexEntry{Path: res.path, Mode: res.mode, BlobID: res.blobID}); err != nil {
			return nil, nil, deltaError(i, res.path, fmt.Errorf("stage entry: %w", err))
		}
		affected = append(affected, res.path)
		if res.delta.Status == patch.StatusModified && res.delta.OldFile.Path == res.delta.NewFile.Path {
			knownPaths[res.path] = true
		}
	}

	return affected, knownPaths, nil
}

// Apply applies every delta in diff against opts.Out, staging results in
// memory until all deltas have succeeded so that a delta that fails to
// apply leaves the index and working directory untouched (the batch is
// atomic across the diff, per the applier's two-pass design). It then
// stages the results into opts.Out and, when opts.Location is
// LocationWorkdir or LocationBoth, checks them out. Apply never calls
// opts.Out.Write; persisting the index is left to the caller.
func (r *Repo) Apply(opts Options, diff Diff) error {
	needsCheckout := opts.Location == LocationWorkdir || opts.Location == LocationBoth
	if needsCheckout && opts.Checkout == nil {
		return fmt.Errorf("gitapply: Location requires checkout but Options.Checkout is nil")
	}

	affected, knownPaths, err := r.applyCore(opts, diff)
	if err != nil {
		return err
	}

	if needsCheckout {
		flags := CheckoutFlags{
			Safe:                 true,
			DisablePathspecMatch: true,
			DontUpdateIndex:      opts.Location == LocationWorkdir,
			KnownPaths:           knownPaths,
		}
		if err := opts.Checkout.Checkout(opts.Out, affected, flags); err != nil {
			return fmt.Errorf("gitapply: checkout: %w", err)
		}
	}

	r.Log.WithField("deltas", diff.NumDeltas()).Debug("batch applied")
	return nil
}

// ApplyToTree seeds opts.Out from a preimage tree (the caller populates it
// before calling, e.g. by copying a tree's entries into an in-memory
// Index), runs the same pre-pass-then-apply-pass logic as Apply, and
// returns the resulting postimage Index without any checkout or index
// commit. This is the "apply to a tree" entry point of §6:
// apply_to_tree(repo, preimage_tree, diff) -> (postimage_index, err).
// opts.Location and opts.Checkout are ignored.
func (r *Repo) ApplyToTree(opts Options, diff Diff) (Index, error) {
	if _, _, err := r.applyCore(opts, diff); err != nil {
		return nil, err
	}
	r.Log.WithField("deltas", diff.NumDeltas()).Debug("tree applied")
	return opts.Out, nil
}

func displayPath(d patch.Delta) string {
	if d.NewFile.Path != "" {
		return d.NewFile.Path
	}
	return d.OldFile.Path
}
