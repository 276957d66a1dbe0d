package patch

import "bytes"

// BinaryType identifies how a BinaryFilePayload's inflated data should be
// interpreted.
type BinaryType int

const (
	BinaryLiteral BinaryType = iota
	BinaryDelta
)

// BinaryFilePayload is one side of a BinaryPatch: a compressed byte payload
// together with its declared inflated length. A zero-length Data denotes
// "identical to source".
type BinaryFilePayload struct {
	Type        BinaryType
	Data        []byte
	InflatedLen int
}

// BinaryPatch pairs the forward (source to target) and reverse (target to
// source, used only for verification) payloads of a binary file change.
type BinaryPatch struct {
	NewFile      BinaryFilePayload
	OldFile      BinaryFilePayload
	ContainsData bool
}

// Inflater decompresses a payload produced by a patch source. Callers
// supply a concrete implementation; see package inflate for one backed by
// zlib.
type Inflater interface {
	Inflate(data []byte) ([]byte, error)
}

// DeltaApplier applies a binary delta against a base buffer. Callers
// supply a concrete implementation; see package delta for one compatible
// with the git pack delta format.
type DeltaApplier interface {
	Apply(base, delta []byte) ([]byte, error)
}

// ApplyBinaryOne inflates payload's data (if any) and applies it to source
// as either a literal replacement or a delta, per payload.Type.
func ApplyBinaryOne(inflater Inflater, deltaApplier DeltaApplier, source []byte, payload BinaryFilePayload) ([]byte, error) {
	if len(payload.Data) == 0 {
		return append([]byte(nil), source...), nil
	}

	inflated, err := inflater.Inflate(payload.Data)
	if err != nil {
		return nil, wrapError(KindCollaboratorFail, err)
	}
	if len(inflated) != payload.InflatedLen {
		return nil, newError(KindApplyFail, "inflated delta does not match expected length")
	}

	switch payload.Type {
	case BinaryLiteral:
		return inflated, nil
	case BinaryDelta:
		out, err := deltaApplier.Apply(source, inflated)
		if err != nil {
			return nil, wrapError(KindApplyFail, err)
		}
		return out, nil
	default:
		return nil, newError(KindApplyFail, "unknown binary delta type")
	}
}

// ApplyBinary applies p's binary patch to source, verifying the result by
// applying the reverse (old_file) payload and checking it reconstructs
// source byte-for-byte. Successful application implies
// ApplyBinaryOne(forward, old_file) == source.
func ApplyBinary(inflater Inflater, deltaApplier DeltaApplier, source []byte, p *Patch) ([]byte, error) {
	if p.Binary == nil || !p.Binary.ContainsData {
		return nil, newError(KindApplyFail, "patch does not contain binary data")
	}

	if len(p.Binary.OldFile.Data) == 0 && len(p.Binary.NewFile.Data) == 0 {
		return nil, nil
	}

	forward, err := ApplyBinaryOne(inflater, deltaApplier, source, p.Binary.NewFile)
	if err != nil {
		return nil, err
	}

	reverse, err := ApplyBinaryOne(inflater, deltaApplier, forward, p.Binary.OldFile)
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(source, reverse) {
		return nil, newError(KindApplyFail, "binary patch did not apply cleanly")
	}

	return forward, nil
}
