// Package store provides the disk persistence layer for cached OCR artifacts.
//
// Each entry is stored as two files under a sharded directory layout:
// a zstd-compressed blob holding the artifact bytes and a JSON sidecar
// holding the entry metadata. Writes go through a temp-file-then-rename
// protocol so readers never observe a partially written entry.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	defaultShardPrefixLen = 2
	defaultDirPerm        = 0o700

	blobExt = ".zst"
	metaExt = ".json"
)

// ErrNotFound is returned by Get when no blob exists for the key.
var ErrNotFound = errors.New("ocrcache: entry not found")

// Meta is the per-entry metadata persisted alongside each blob.
//
// SizeBytes is the compressed on-disk size of the blob file, not the
// uncompressed artifact size.
type Meta struct {
	Key           string    `json:"key"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
	SizeBytes     int64     `json:"sizeBytes"`
	FormatVersion int       `json:"formatVersion"`
}

// Store persists artifact blobs and their metadata under a cache directory.
type Store struct {
	dir            string
	shardPrefixLen int
	dirPerm        os.FileMode
	enc            *zstd.Encoder
	dec            *zstd.Decoder
}

// Option configures a Store.
type Option func(*Store)

// WithShardPrefixLen sets the number of hex characters used for sharding.
// Use 0 to disable sharding. Defaults to 2.
func WithShardPrefixLen(n int) Option {
	return func(s *Store) {
		s.shardPrefixLen = n
	}
}

// WithDirPerm sets the directory permissions used for cache directories.
func WithDirPerm(mode os.FileMode) Option {
	return func(s *Store) {
		s.dirPerm = mode
	}
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("ocrcache: store dir is empty")
	}
	s := &Store{
		dir:            dir,
		shardPrefixLen: defaultShardPrefixLen,
		dirPerm:        defaultDirPerm,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.shardPrefixLen < 0 {
		return nil, errors.New("ocrcache: shard prefix length must be >= 0")
	}
	if err := os.MkdirAll(dir, s.dirPerm); err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("ocrcache: creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("ocrcache: creating zstd decoder: %w", err)
	}
	s.enc = enc
	s.dec = dec
	return s, nil
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// Put persists the artifact payload and its metadata under key,
// fully replacing any previous entry for the same key. The blob is
// compressed before writing; the returned size and meta.SizeBytes
// reflect the compressed on-disk size.
func (s *Store) Put(key string, payload []byte, meta Meta) (int64, error) {
	blobPath, err := s.path(key, blobExt)
	if err != nil {
		return 0, err
	}

	compressed := s.enc.EncodeAll(payload, nil)

	if err := os.MkdirAll(filepath.Dir(blobPath), s.dirPerm); err != nil {
		return 0, err
	}
	if err := atomicWrite(blobPath, compressed); err != nil {
		return 0, err
	}

	meta.Key = key
	meta.SizeBytes = int64(len(compressed))
	encoded, err := json.Marshal(meta)
	if err != nil {
		return 0, fmt.Errorf("ocrcache: encoding metadata: %w", err)
	}

	metaPath, err := s.path(key, metaExt)
	if err != nil {
		return 0, err
	}
	if err := atomicWrite(metaPath, encoded); err != nil {
		// Leave no blob behind without its metadata; Scan would
		// reclaim it anyway, but cleaning up now is cheap.
		_ = os.Remove(blobPath)
		return 0, err
	}
	return int64(len(compressed)), nil
}

// Get reads and decompresses the blob for key.
// Returns ErrNotFound if no blob exists.
func (s *Store) Get(key string) ([]byte, error) {
	blobPath, err := s.path(key, blobExt)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(blobPath) //nolint:gosec // path is derived from hash, not user input
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	payload, err := s.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("ocrcache: decompressing blob %s: %w", key, err)
	}
	return payload, nil
}

// Delete removes the blob and metadata for key.
// Deleting a key that does not exist is a no-op.
func (s *Store) Delete(key string) error {
	blobPath, err := s.path(key, blobExt)
	if err != nil {
		return err
	}
	metaPath, err := s.path(key, metaExt)
	if err != nil {
		return err
	}
	var firstErr error
	for _, path := range []string{blobPath, metaPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Scan walks the store and returns metadata for every complete entry.
//
// Incomplete entries are repaired in place: metadata without a blob is
// removed, blobs without metadata are removed, and unparseable metadata
// is removed together with its blob. Scan is used to rebuild the index
// at startup and by consistency sweeps.
func (s *Store) Scan() ([]Meta, error) {
	metas := make(map[string]Meta)
	metaPaths := make(map[string]string)
	blobPaths := make(map[string]string)

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()
		switch {
		case strings.HasSuffix(name, metaExt):
			key := strings.TrimSuffix(name, metaExt)
			data, err := os.ReadFile(path) //nolint:gosec // paths come from our own walk
			if err != nil {
				return err
			}
			var m Meta
			if err := json.Unmarshal(data, &m); err != nil || m.Key != key {
				// Corrupt sidecar; drop the whole entry.
				_ = os.Remove(path)
				return nil
			}
			metas[key] = m
			metaPaths[key] = path
		case strings.HasSuffix(name, blobExt):
			blobPaths[strings.TrimSuffix(name, blobExt)] = path
		}
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]Meta, 0, len(metas))
	for key, m := range metas {
		if _, ok := blobPaths[key]; !ok {
			_ = os.Remove(metaPaths[key])
			continue
		}
		out = append(out, m)
	}
	for key, path := range blobPaths {
		if _, ok := metas[key]; !ok {
			_ = os.Remove(path)
		}
	}
	return out, nil
}

// TotalSizeBytes sums the on-disk size of all regular files in the store.
func (s *Store) TotalSizeBytes() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	return total, err
}

// Clear removes every persisted entry and leaves an empty store directory.
func (s *Store) Clear() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return err
	}
	return os.MkdirAll(s.dir, s.dirPerm)
}

func (s *Store) path(key, ext string) (string, error) {
	if key == "" {
		return "", errors.New("ocrcache: key is empty")
	}
	if s.shardPrefixLen <= 0 {
		return filepath.Join(s.dir, key+ext), nil
	}
	prefixLen := s.shardPrefixLen
	if prefixLen > len(key) {
		prefixLen = len(key)
	}
	return filepath.Join(s.dir, key[:prefixLen], key+ext), nil
}

// atomicWrite writes data to path via a temp file and rename so readers
// only ever observe complete files.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "cache-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
