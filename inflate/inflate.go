// Package inflate implements the decompression primitive the patch package
// calls into for binary file payloads. Git compresses binary patch data
// with raw zlib, so this wraps klauspost/compress/zlib, which
// antgroup/hugescm already depends on for its own object-store
// compression.
package inflate

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Zlib decompresses zlib-framed payloads. Its zero value is ready to use.
type Zlib struct{}

// Inflate decompresses data as a zlib stream.
func (Zlib) Inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	return out, nil
}
