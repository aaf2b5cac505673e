package ocrcache

import "errors"

// Input errors returned by Set (and logged by Get) when the caller
// supplies values the cache cannot key or store. They indicate a caller
// bug, never a cache failure.
var (
	// ErrInvalidDigest is returned when the supplied content hash is not
	// a well-formed digest.
	ErrInvalidDigest = errors.New("ocrcache: invalid content digest")

	// ErrInvalidConfig is returned when a configuration value has a type
	// that cannot be canonicalized.
	ErrInvalidConfig = errors.New("ocrcache: invalid configuration value")

	// ErrEmptyArtifact is returned when Set is called with no artifact bytes.
	ErrEmptyArtifact = errors.New("ocrcache: empty artifact")
)
