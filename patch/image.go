package patch

import "bytes"

// Image is an ordered sequence of Lines backed by a buffer that was split on
// newlines, plus whatever Lines have been spliced in since. It is the
// in-memory, splice-able view of a file used to apply text hunks.
//
// Concatenating every Line of a freshly built Image reproduces the source
// buffer exactly, including the absence of a final newline. This invariant
// must also hold after any sequence of splices whose inserted Lines
// preserve it.
type Image struct {
	lines []Line
}

// NewImage splits buf at every '\n', producing one Line per segment. Each
// Line's Content includes its terminating '\n' if present; the final Line
// has no trailing newline if buf does not end in one. Empty input yields an
// empty Image.
func NewImage(buf []byte) *Image {
	img := &Image{}
	for len(buf) > 0 {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			img.lines = append(img.lines, Line{Content: string(buf)})
			break
		}
		img.lines = append(img.lines, Line{Content: string(buf[:i+1])})
		buf = buf[i+1:]
	}
	return img
}

// Len returns the number of Lines currently in the Image.
func (img *Image) Len() int {
	return len(img.lines)
}

// Get returns the Line at index i. It panics if i is out of range, matching
// the "programmer error" contract of the spec's random-access read.
func (img *Image) Get(i int) Line {
	return img.lines[i]
}

// Splice removes removeN Lines starting at index at and inserts insert in
// their place. at must be in [0, Len()] and at+removeN must be in [0,
// Len()].
func (img *Image) Splice(at, removeN int, insert []Line) {
	tail := append([]Line(nil), img.lines[at+removeN:]...)
	img.lines = append(img.lines[:at], insert...)
	img.lines = append(img.lines, tail...)
}

// Serialize concatenates every Line's Content in order, reproducing the
// current state of the buffer this Image represents.
func (img *Image) Serialize() []byte {
	size := 0
	for _, l := range img.lines {
		size += len(l.Content)
	}
	out := make([]byte, 0, size)
	for _, l := range img.lines {
		out = append(out, l.Content...)
	}
	return out
}
