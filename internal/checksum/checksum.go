// Package checksum computes file digests for ingested attachments.
package checksum

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
)

// Algorithm selects the digest algorithm.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA256 Algorithm = "sha256"
)

// Parse converts a string selector to an Algorithm.
func Parse(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case MD5:
		return MD5, nil
	case SHA256:
		return SHA256, nil
	default:
		return "", fmt.Errorf("unknown checksum algorithm: %q", s)
	}
}

func (a Algorithm) String() string { return string(a) }

func (a Algorithm) newHash() hash.Hash {
	if a == MD5 {
		return md5.New()
	}
	return sha256.New()
}

// chunkSize is the read buffer used while digesting. Files are never read
// into memory whole; memory use is constant regardless of file size.
const chunkSize = 4096

// Sum streams the reader through the selected hash and returns a prefixed
// digest of the form "<algorithm>:<hex digest>".
func Sum(algo Algorithm, r io.Reader) (string, error) {
	h := algo.newHash()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return fmt.Sprintf("%s:%x", algo, h.Sum(nil)), nil
}
