// Package patchsource decodes a structured, JSON-encoded patch set into
// patch.Patch values and exposes them through the batch.Diff interface.
// It is deliberately not a unified-diff-text parser: callers that already
// have diff content as line-level JSON (for example, generated by a code
// review tool or transmitted over an API) hand it here directly instead
// of round-tripping through text.
package patchsource

import (
	"encoding/json"
	"fmt"

	"github.com/kestrelpatch/gitapply/patch"
)

// jsonDiff is the top-level decoded shape of a patch set document.
type jsonDiff struct {
	Deltas []jsonDelta `json:"deltas"`
}

type jsonDelta struct {
	Status  string `json:"status"`
	Binary  bool   `json:"binary"`
	OldPath string `json:"old_path"`
	OldMode uint32 `json:"old_mode"`
	NewPath string `json:"new_path"`
	NewMode uint32 `json:"new_mode"`

	Hunks       []jsonHunk       `json:"hunks,omitempty"`
	BinaryPatch *jsonBinaryPatch `json:"binary_patch,omitempty"`
}

type jsonHunk struct {
	NewStart int        `json:"new_start"`
	Lines    []jsonLine `json:"lines"`
}

type jsonLine struct {
	Origin  string `json:"origin"`
	Content string `json:"content"`
}

type jsonBinaryPatch struct {
	New          *jsonBinaryPayload `json:"new,omitempty"`
	Old          *jsonBinaryPayload `json:"old,omitempty"`
	ContainsData bool               `json:"contains_data"`
}

type jsonBinaryPayload struct {
	// Type is "literal" or "delta".
	Type string `json:"type"`
	// Data is the payload, base85-encoded in Git's own alphabet (see
	// base85.go), still in its compressed (zlib-deflated) form: the
	// patch package's Inflater collaborator decompresses it, same as
	// for a textual "GIT binary patch" block.
	Data string `json:"data"`
	// DataLen is the byte length of Data before base85 encoding (that
	// is, the compressed payload's length). Git's own base85 patch
	// lines carry an explicit byte count for the same reason: base85
	// always encodes in groups of 5 characters per 4 input bytes, so
	// the encoded string alone can't reveal how many of the last
	// group's bytes are real versus zero padding.
	DataLen int `json:"data_len"`
	// InflatedLen is the payload's length after decompression.
	InflatedLen int `json:"inflated_len"`
}

func statusFromString(s string) (patch.Status, error) {
	switch s {
	case "modified":
		return patch.StatusModified, nil
	case "added":
		return patch.StatusAdded, nil
	case "deleted":
		return patch.StatusDeleted, nil
	case "renamed":
		return patch.StatusRenamed, nil
	case "copied":
		return patch.StatusCopied, nil
	case "typechange":
		return patch.StatusTypeChange, nil
	default:
		return 0, fmt.Errorf("patchsource: unknown status %q", s)
	}
}

func originFromString(s string) (patch.Origin, error) {
	switch s {
	case "context":
		return patch.OriginContext, nil
	case "addition":
		return patch.OriginAddition, nil
	case "deletion":
		return patch.OriginDeletion, nil
	default:
		return 0, fmt.Errorf("patchsource: unknown line origin %q", s)
	}
}

func binaryTypeFromString(s string) (patch.BinaryType, error) {
	switch s {
	case "literal":
		return patch.BinaryLiteral, nil
	case "delta":
		return patch.BinaryDelta, nil
	default:
		return 0, fmt.Errorf("patchsource: unknown binary payload type %q", s)
	}
}

func parseJSONDiff(data []byte) (*jsonDiff, error) {
	var d jsonDiff
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("patchsource: decode patch set: %w", err)
	}
	return &d, nil
}
