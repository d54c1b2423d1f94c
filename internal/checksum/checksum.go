// Package checksum computes content digests used to skip byte-identical rewrites.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// File returns the digest of the file at path, or "" if it cannot be read.
func File(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return Sum(data)
}

// Same reports whether the file at path already holds exactly data.
func Same(path string, data []byte) bool {
	cur := File(path)
	return cur != "" && cur == Sum(data)
}
