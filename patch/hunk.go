package patch

import "fmt"

// Hunk describes one contiguous change region of a text file. LineStart and
// LineCount identify the half-open range of annotated Lines belonging to
// this hunk within the patch's flat Lines table; NewStart is the 1-based
// line number in the postimage where the first postimage line belongs (0
// means "at the top").
type Hunk struct {
	NewStart  int
	LineStart int
	LineCount int
}

// split partitions a hunk's annotated lines (taken from the patch's flat
// line table) into the preimage sequence (context + deletion) and the
// postimage sequence (context + addition), in order.
func (h Hunk) split(table []Line) (preimage, postimage []Line, err error) {
	for i := 0; i < h.LineCount; i++ {
		idx := h.LineStart + i
		if idx < 0 || idx >= len(table) {
			return nil, nil, &Error{Kind: KindApplyFail, Line: idx, NewStart: -1,
				msg: fmt.Sprintf("preimage missing line %d", idx)}
		}
		line := table[idx]
		if line.Old() {
			preimage = append(preimage, line)
		}
		if line.New() {
			postimage = append(postimage, line)
		}
	}
	return preimage, postimage, nil
}

// applyHunk locates hunk's preimage sequence in image at the hunk's
// declared anchor and splices in the postimage sequence. It applies at the
// stated location only: no fuzzy search, no offset scanning.
func applyHunk(image *Image, table []Line, hunk Hunk) error {
	preimage, postimage, err := hunk.split(table)
	if err != nil {
		return err
	}

	target := 0
	if hunk.NewStart != 0 {
		target = hunk.NewStart - 1
	}
	if target > image.Len() {
		target = image.Len()
	}

	if !match(image, preimage, target) {
		return &Error{Kind: KindApplyFail, Line: -1, NewStart: hunk.NewStart,
			msg: fmt.Sprintf("hunk at line %d did not apply", hunk.NewStart)}
	}

	image.Splice(target, len(preimage), postimage)
	return nil
}
