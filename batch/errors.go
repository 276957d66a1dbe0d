package batch

import "fmt"

// Error reports why one delta in a batch failed to apply. Batch apply is
// atomic across a diff: Out is left unmodified whenever an Error is
// returned from Apply or ApplyToTree.
type Error struct {
	// Index is the position of the failing delta within the diff.
	Index int
	// Path identifies the delta, preferring the new path and falling
	// back to the old one for deletions.
	Path string
	err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gitapply: delta %d (%s): %v", e.Index, e.Path, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

func deltaError(index int, path string, err error) *Error {
	return &Error{Index: index, Path: path, err: err}
}
