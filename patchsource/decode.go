package patchsource

import (
	"fmt"

	"github.com/kestrelpatch/gitapply/patch"
)

// Set is a decoded patch set: an ordered collection of patches, ready to
// drive a batch apply through the batch.Diff interface.
type Set struct {
	patches []*patch.Patch
}

// Decode parses a JSON-encoded patch set document.
func Decode(data []byte) (*Set, error) {
	jd, err := parseJSONDiff(data)
	if err != nil {
		return nil, err
	}

	patches := make([]*patch.Patch, 0, len(jd.Deltas))
	for i, jdelta := range jd.Deltas {
		p, err := decodeDelta(jdelta)
		if err != nil {
			return nil, fmt.Errorf("patchsource: delta %d (%s): %w", i, QuotePath(displayPath(jdelta)), err)
		}
		patches = append(patches, p)
	}
	return &Set{patches: patches}, nil
}

// NumDeltas implements batch.Diff.
func (s *Set) NumDeltas() int { return len(s.patches) }

// DeltaAt implements batch.Diff.
func (s *Set) DeltaAt(i int) patch.Delta { return s.patches[i].Delta }

// PatchFrom implements batch.Diff.
func (s *Set) PatchFrom(i int) (*patch.Patch, error) { return s.patches[i], nil }

func displayPath(d jsonDelta) string {
	if d.NewPath != "" {
		return d.NewPath
	}
	return d.OldPath
}

func decodeDelta(jd jsonDelta) (*patch.Patch, error) {
	status, err := statusFromString(jd.Status)
	if err != nil {
		return nil, err
	}

	oldMode := jd.OldMode
	if oldMode == 0 {
		oldMode = patch.DefaultFileMode
	}
	newMode := jd.NewMode
	if newMode == 0 {
		newMode = patch.DefaultFileMode
	}

	delta := patch.Delta{
		Status:  status,
		Binary:  jd.Binary,
		OldFile: patch.FileRef{Path: jd.OldPath, Mode: oldMode},
		NewFile: patch.FileRef{Path: jd.NewPath, Mode: newMode},
	}

	p := &patch.Patch{Delta: delta}

	var lines []patch.Line
	for _, jh := range jd.Hunks {
		start := len(lines)
		for _, jl := range jh.Lines {
			origin, err := originFromString(jl.Origin)
			if err != nil {
				return nil, err
			}
			lines = append(lines, patch.Line{Origin: origin, Content: jl.Content})
		}
		p.Hunks = append(p.Hunks, patch.Hunk{
			NewStart:  jh.NewStart,
			LineStart: start,
			LineCount: len(jh.Lines),
		})
	}
	p.Lines = lines

	if jd.BinaryPatch != nil {
		bp, err := decodeBinaryPatch(jd.BinaryPatch)
		if err != nil {
			return nil, err
		}
		p.Binary = bp
	}

	return p, nil
}

func decodeBinaryPayload(jp *jsonBinaryPayload) (patch.BinaryFilePayload, error) {
	if jp == nil {
		return patch.BinaryFilePayload{}, nil
	}

	typ, err := binaryTypeFromString(jp.Type)
	if err != nil {
		return patch.BinaryFilePayload{}, err
	}

	if jp.Data == "" {
		return patch.BinaryFilePayload{Type: typ, InflatedLen: jp.InflatedLen}, nil
	}

	// The base85 alphabet packs 4 decoded bytes into 5 encoded
	// characters, with the final group padded out to 5 characters
	// regardless of how many real bytes it holds; the encoded string's
	// length alone can't reveal that padding, so the true decoded
	// length has to come from DataLen (the compressed payload's byte
	// length), not be derived from len(jp.Data).
	raw := make([]byte, jp.DataLen)
	if err := decodeBase85(raw, []byte(jp.Data)); err != nil {
		return patch.BinaryFilePayload{}, err
	}

	return patch.BinaryFilePayload{Type: typ, Data: raw, InflatedLen: jp.InflatedLen}, nil
}

func decodeBinaryPatch(jbp *jsonBinaryPatch) (*patch.BinaryPatch, error) {
	newFile, err := decodeBinaryPayload(jbp.New)
	if err != nil {
		return nil, fmt.Errorf("new file payload: %w", err)
	}
	oldFile, err := decodeBinaryPayload(jbp.Old)
	if err != nil {
		return nil, fmt.Errorf("old file payload: %w", err)
	}
	return &patch.BinaryPatch{
		NewFile:      newFile,
		OldFile:      oldFile,
		ContainsData: jbp.ContainsData,
	}, nil
}
