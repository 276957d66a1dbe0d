// Package delta implements the git pack delta format: a byte-oriented
// encoding of copy and insert operations against a base buffer. It is the
// default patch.DeltaApplier used when a binary patch's type is
// patch.BinaryDelta.
//
// The format is adapted from the copy/add opcode decoder in
// bluekeyes/go-gitdiff's apply.go, which in turn implements the same
// encoding documented in Git's pack-format.txt.
package delta

import (
	"bytes"
	"errors"
)

// Applier decodes and applies git pack deltas. Its zero value is ready to
// use; it has no configuration and holds no state between calls.
type Applier struct{}

// Apply decodes delta as a git pack delta against base and returns the
// resulting buffer. delta is expected to already be inflated (the caller's
// patch.Inflater is responsible for decompression).
func (Applier) Apply(base, delta []byte) ([]byte, error) {
	srcSize, rest := readSize(delta)
	if err := checkBaseSize(srcSize, base); err != nil {
		return nil, err
	}

	dstSize, rest := readSize(rest)

	var out bytes.Buffer
	out.Grow(int(dstSize))

	remaining := dstSize
	for len(rest) > 0 {
		op := rest[0]
		if op == 0 {
			return nil, errors.New("invalid delta opcode 0")
		}

		var n int64
		var err error
		if op&0x80 != 0 {
			n, rest, err = copyOp(&out, op, rest[1:], base)
		} else {
			n, rest, err = addOp(&out, op, rest[1:])
		}
		if err != nil {
			return nil, err
		}
		remaining -= n
	}

	if remaining != 0 {
		return nil, errors.New("corrupt binary delta: insufficient or extra data")
	}
	return out.Bytes(), nil
}

// readSize reads a variable-length size from a delta-encoded binary
// fragment, returning the size and the unused data. Sizes are encoded as
//
//	[[1xxxxxxx]...] [0xxxxxxx]
//
// in little-endian order, with 7 bits of the value per byte.
func readSize(d []byte) (size int64, rest []byte) {
	shift := uint(0)
	for i, b := range d {
		size |= int64(b&0x7F) << shift
		shift += 7
		if b <= 0x7F {
			return size, d[i+1:]
		}
	}
	return size, nil
}

// addOp applies an insert opcode, returning the amount of data written and
// the unused part of delta. An insert operation takes the form
//
//	[0xxxxxx][[data1]...]
//
// where the lower seven bits of the opcode give the number of data bytes
// that follow.
func addOp(out *bytes.Buffer, op byte, delta []byte) (n int64, rest []byte, err error) {
	size := int(op)
	if len(delta) < size {
		return 0, delta, errors.New("corrupt binary delta: incomplete insert")
	}
	out.Write(delta[:size])
	return int64(size), delta[size:], nil
}

// copyOp applies a copy opcode, returning the amount of data written and
// the unused part of delta. A copy operation takes the form
//
//	[1xxxxxxx][offset1][offset2][offset3][offset4][size1][size2][size3]
//
// where the lower seven bits of the opcode determine which non-zero offset
// and size bytes are present, in little-endian order. If no offset or size
// bytes are present, offset is 0 and size is 0x10000.
func copyOp(out *bytes.Buffer, op byte, delta []byte, base []byte) (n int64, rest []byte, err error) {
	const defaultSize = 0x10000

	var unpackErr error
	unpack := func(start, bits uint) (v int64) {
		for i := uint(0); i < bits; i++ {
			mask := byte(1 << (i + start))
			if op&mask == 0 {
				continue
			}
			if len(delta) == 0 {
				unpackErr = errors.New("corrupt binary delta: incomplete copy")
				return
			}
			v |= int64(delta[0]) << (8 * i)
			delta = delta[1:]
		}
		return
	}

	offset := unpack(0, 4)
	size := unpack(4, 3)
	if unpackErr != nil {
		return 0, delta, unpackErr
	}
	if size == 0 {
		size = defaultSize
	}

	if offset < 0 || size < 0 || offset+size > int64(len(base)) {
		return 0, delta, errors.New("corrupt binary delta: copy exceeds base buffer")
	}

	out.Write(base[offset : offset+size])
	return size, delta, nil
}

// checkBaseSize verifies that base has exactly the length the delta
// declares as its source size.
func checkBaseSize(size int64, base []byte) error {
	if size != int64(len(base)) {
		return errors.New("base buffer does not match delta's declared source size")
	}
	return nil
}
