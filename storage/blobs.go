// Package storage implements filesystem-backed collaborators for package
// batch: a content-addressed blob store, a TOML-persisted index, and a
// working-directory checkout. The blob layout (a two-character fan-out
// directory keyed by a content hash, each object zlib-deflated) mirrors
// the loose object store antgroup/hugescm's backend.Database builds on
// top of its storage.Storage interface, adapted here to a flat
// filesystem instead of hugescm's pluggable multi-storage backend.
package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"
)

// Blobs is a content-addressed, zlib-compressed object store rooted at a
// directory. Its zero value is not usable; construct one with NewBlobs.
type Blobs struct {
	root string
}

// NewBlobs opens (creating if necessary) a blob store rooted at root.
func NewBlobs(root string) (*Blobs, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create blob root: %w", err)
	}
	return &Blobs{root: root}, nil
}

// Write stores data under its SHA-256 digest and returns the digest as a
// hex string. Writing the same content twice is a no-op on the second
// call: the object already exists at its content address.
func (b *Blobs) Write(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	id := hex.EncodeToString(sum[:])

	path := b.path(id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("storage: create blob dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "blob-*.tmp")
	if err != nil {
		return "", fmt.Errorf("storage: create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := zlib.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("storage: compress blob: %w", err)
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("storage: compress blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: close temp blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("storage: commit blob: %w", err)
	}
	return id, nil
}

// Read decompresses and returns the content stored under id.
func (b *Blobs) Read(id string) ([]byte, error) {
	f, err := os.Open(b.path(id))
	if err != nil {
		return nil, fmt.Errorf("storage: open blob %s: %w", id, err)
	}
	defer f.Close()

	r, err := zlib.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("storage: decompress blob %s: %w", id, err)
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("storage: decompress blob %s: %w", id, err)
	}
	return buf.Bytes(), nil
}

func (b *Blobs) path(id string) string {
	if len(id) < 2 {
		return filepath.Join(b.root, id)
	}
	return filepath.Join(b.root, id[:2], id[2:])
}
