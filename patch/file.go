package patch

// Status describes the kind of change a Delta records.
type Status int

const (
	StatusModified Status = iota
	StatusAdded
	StatusDeleted
	StatusRenamed
	StatusCopied
	StatusTypeChange
)

// DefaultFileMode is used for the new file's mode when a patch does not
// declare one explicitly, matching libgit2's GIT_FILEMODE_BLOB.
const DefaultFileMode uint32 = 0o100644

// FileRef names one side (old or new) of a Delta.
type FileRef struct {
	Path string
	Mode uint32
}

// Delta carries the per-file metadata of a patch: what kind of change it
// is, whether it is binary, and the old/new paths and modes.
type Delta struct {
	Status  Status
	Binary  bool
	OldFile FileRef
	NewFile FileRef
}

// Patch is a Delta plus the change content: a flat table of annotated
// Lines, the Hunks that reference ranges of it, and an optional binary
// patch.
type Patch struct {
	Delta  Delta
	Lines  []Line
	Hunks  []Hunk
	Binary *BinaryPatch
}

// ApplyFile applies p to source, selecting the binary or textual path (or
// neither, for a pure rename/mode change), and returns the resulting bytes
// along with the output path and mode. inflater and deltaApplier are only
// consulted if p.Delta.Binary is set.
//
// For a deletion, ApplyFile returns an empty path and zero mode; if the result
// is non-empty in that case, it fails with "removal patch leaves file
// contents" rather than silently discarding content.
func ApplyFile(source []byte, p *Patch, inflater Inflater, deltaApplier DeltaApplier) (out []byte, path string, mode uint32, err error) {
	if p.Delta.Status != StatusDeleted {
		path = p.Delta.NewFile.Path
		mode = p.Delta.NewFile.Mode
		if mode == 0 {
			mode = DefaultFileMode
		}
	}

	switch {
	case p.Delta.Binary:
		out, err = ApplyBinary(inflater, deltaApplier, source, p)
	case len(p.Hunks) > 0:
		out, err = ApplyText(source, p)
	default:
		out = append([]byte(nil), source...)
	}
	if err != nil {
		return nil, "", 0, err
	}

	if p.Delta.Status == StatusDeleted && len(out) > 0 {
		return nil, "", 0, newError(KindApplyFail, "removal patch leaves file contents")
	}

	return out, path, mode, nil
}
