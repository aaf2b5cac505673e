package ocrcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/opencontainers/go-digest"
)

// deriveKey maps a content digest and configuration to the cache key.
//
// The key is the hex SHA-256 of the digest string, a zero separator, and
// the canonical rendering of the key-relevant settings. Identical
// (content, effective config) pairs always produce the same key; any
// difference in either input produces a different key with cryptographic
// collision resistance.
func deriveKey(contentHash digest.Digest, cfg Config) (string, error) {
	if err := contentHash.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}
	canon, err := cfg.canonical()
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(contentHash))
	h.Write([]byte{0})
	h.Write(canon)
	return hex.EncodeToString(h.Sum(nil)), nil
}
