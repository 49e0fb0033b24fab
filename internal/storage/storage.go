// Package storage remembers which board snapshots were already published, so
// a board that keeps showing the same departure does not re-publish it on
// every poll or after a restart.
package storage

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Store tracks published snapshot fingerprints (domain.Snapshot.ID).
// A fingerprint is "seen" from MarkSnapshot until its TTL elapses; after that
// the same board state is published again.
type Store interface {
	Close() error
	SeenSnapshot(id string) (bool, error)
	MarkSnapshot(id string) error
}

// Backend names accepted by NewStore (the storage_type config key).
const (
	BackendNone  = "none"
	BackendBBolt = "bbolt"
)

// Options controls how long a published snapshot suppresses republishing
// and how often expired fingerprints are swept.
type Options struct {
	SnapshotTTL     time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSnapshotTTL     = 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// NewStore opens the backend named by backend. "" and "disabled" are
// accepted as aliases of "none".
func NewStore(backend, path string, opts Options) (Store, error) {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = defaultSnapshotTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendNone, "disabled":
		return noopStore{}, nil
	case BackendBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q (want %s or %s)", backend, BackendNone, BackendBBolt)
	}
}

// noopStore never remembers anything, so every changed snapshot is published.
type noopStore struct{}

func (noopStore) Close() error                      { return nil }
func (noopStore) SeenSnapshot(string) (bool, error) { return false, nil }
func (noopStore) MarkSnapshot(string) error         { return nil }

// markRecord is the value persisted per snapshot fingerprint: two big-endian
// unix seconds, marked-at then expires-at.
type markRecord struct {
	markedAt  time.Time
	expiresAt time.Time
}

const markRecordSize = 16

func newMarkRecord(now time.Time, ttl time.Duration) markRecord {
	return markRecord{markedAt: now, expiresAt: now.Add(ttl)}
}

func (r markRecord) encode() []byte {
	buf := make([]byte, markRecordSize)
	binary.BigEndian.PutUint64(buf[:8], uint64(r.markedAt.Unix()))
	binary.BigEndian.PutUint64(buf[8:], uint64(r.expiresAt.Unix()))
	return buf
}

// decodeMarkRecord rejects values of the wrong size or with unset times;
// callers treat those as expired.
func decodeMarkRecord(value []byte) (markRecord, bool) {
	if len(value) != markRecordSize {
		return markRecord{}, false
	}
	marked := int64(binary.BigEndian.Uint64(value[:8]))
	expires := int64(binary.BigEndian.Uint64(value[8:]))
	if marked <= 0 || expires <= 0 {
		return markRecord{}, false
	}
	return markRecord{markedAt: time.Unix(marked, 0), expiresAt: time.Unix(expires, 0)}, true
}

func (r markRecord) liveAt(now time.Time) bool { return r.expiresAt.After(now) }
