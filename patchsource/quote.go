package patchsource

import "strings"

// QuotePath renders a path the way Git quotes paths containing control
// characters or bytes outside printable ASCII: wrapped in double quotes
// with C-style octal escapes. Plain paths are returned unchanged. This is
// used for log fields and error messages so a path with, say, an
// embedded newline is not pasted directly into a log line.
func QuotePath(s string) string {
	var b strings.Builder
	qpos := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if q, quoted := quoteByte(ch); quoted {
			if qpos == 0 {
				b.WriteByte('"')
			}
			b.WriteString(s[qpos:i])
			b.Write(q)
			qpos = i + 1
		}
	}
	b.WriteString(s[qpos:])
	if qpos > 0 {
		b.WriteByte('"')
	}
	return b.String()
}

var quoteEscapeTable = map[byte]byte{
	'\a': 'a',
	'\b': 'b',
	'\t': 't',
	'\n': 'n',
	'\v': 'v',
	'\f': 'f',
	'\r': 'r',
	'"':  '"',
	'\\': '\\',
}

func quoteByte(b byte) ([]byte, bool) {
	if q, ok := quoteEscapeTable[b]; ok {
		return []byte{'\\', q}, true
	}
	if b < 0x20 || b >= 0x7F {
		return []byte{
			'\\',
			'0' + (b>>6)&0o3,
			'0' + (b>>3)&0o7,
			'0' + (b>>0)&0o7,
		}, true
	}
	return nil, false
}
