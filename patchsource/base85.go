package patchsource

import "fmt"

// base85Alphabet and the decode table are copied from Git's own base85.c
// alphabet (by way of bluekeyes/go-gitdiff's decoder for the binary
// literal/delta fragments found after "GIT binary patch" lines). This
// package's JSON patch sets carry binary payloads base85-encoded in the
// same alphabet, rather than base64, so that a payload copied out of a
// JSON patch set and one copied out of a textual git patch are
// byte-for-byte the same string.
const base85Alphabet = "0123456789" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"abcdefghijklmnopqrstuvwxyz" +
	"!#$%&()*+-;<=>?@^_`{|}~"

var de85 map[byte]byte

func init() {
	de85 = make(map[byte]byte, len(base85Alphabet))
	for i, c := range base85Alphabet {
		de85[byte(c)] = byte(i)
	}
}

// decodeBase85 decodes src, which must hold exactly the base85 encoding
// of len(dst) bytes (rounded up to a multiple of 5 encoded characters per
// 4 decoded bytes), into dst.
func decodeBase85(dst, src []byte) error {
	var v uint32
	var n, ndst int
	for i, b := range src {
		c, ok := de85[b]
		if !ok {
			return fmt.Errorf("patchsource: invalid base85 byte at index %d: 0x%x", i, b)
		}
		v = 85*v + uint32(c)
		n++
		if n == 5 {
			rem := len(dst) - ndst
			for j := 0; j < 4 && j < rem; j++ {
				dst[ndst] = byte(v >> 24)
				ndst++
				v <<= 8
			}
			v = 0
			n = 0
		}
	}
	if n > 0 {
		return fmt.Errorf("patchsource: base85 data terminated by underpadded sequence")
	}
	if ndst < len(dst) {
		return fmt.Errorf("patchsource: base85 data is too short: %d < %d", ndst, len(dst))
	}
	return nil
}
