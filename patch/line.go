// Package patch implements the core of a patch-application engine: given a
// source buffer and a structured patch record, it produces the
// corresponding transformed buffer. It does not parse unified diff text,
// inflate compressed payloads, or read/write any repository state: those
// are collaborators supplied by callers (see the inflate, delta, and batch
// packages for default implementations).
package patch

// Origin identifies where a Line within a hunk came from. Lines produced by
// splitting a source buffer (rather than taken from a hunk) have
// OriginNone.
type Origin int

const (
	OriginNone Origin = iota
	OriginContext
	OriginAddition
	OriginDeletion
)

func (o Origin) String() string {
	switch o {
	case OriginContext:
		return "context"
	case OriginAddition:
		return "addition"
	case OriginDeletion:
		return "deletion"
	default:
		return "none"
	}
}

// Line is a single line of a buffer, including its trailing newline if it
// has one. Content is never mutated in place; splicing an Image replaces
// Line values wholesale.
type Line struct {
	Origin  Origin
	Content string
}

// Old reports whether the line belongs to the preimage: context or
// deletion lines.
func (l Line) Old() bool {
	return l.Origin == OriginContext || l.Origin == OriginDeletion
}

// New reports whether the line belongs to the postimage: context or
// addition lines.
func (l Line) New() bool {
	return l.Origin == OriginContext || l.Origin == OriginAddition
}
