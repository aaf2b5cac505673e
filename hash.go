package ocrcache

import (
	"io"
	"os"

	"github.com/opencontainers/go-digest"
)

// HashReader computes the content digest of everything in r.
//
// Callers hash the raw uploaded bytes once and pass the resulting digest
// to Get and Set; the cache itself never re-reads document content.
func HashReader(r io.Reader) (digest.Digest, error) {
	return digest.Canonical.FromReader(r)
}

// HashBytes computes the content digest of p.
func HashBytes(p []byte) digest.Digest {
	return digest.Canonical.FromBytes(p)
}

// HashFile computes the content digest of the file at path.
func HashFile(path string) (digest.Digest, error) {
	f, err := os.Open(path) //nolint:gosec // callers control the path
	if err != nil {
		return "", err
	}
	defer f.Close()
	return digest.Canonical.FromReader(f)
}
