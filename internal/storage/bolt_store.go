package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

var snapshotBucket = []byte("snapshots")

var errBucketMissing = errors.New("snapshot bucket missing")

// boltStore keeps snapshot fingerprints in a single bbolt bucket.
type boltStore struct {
	db          *bolt.DB
	ttl         time.Duration
	sweepEvery  time.Duration
	sweepMu     sync.Mutex
	lastSweepAt atomic.Int64
}

func openBolt(path string, opts Options) (Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{db: db, ttl: opts.SnapshotTTL, sweepEvery: opts.CleanupInterval}
	store.lastSweepAt.Store(time.Now().Unix())
	return store, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// update runs fn against the snapshot bucket in a read-write transaction.
func (b *boltStore) update(fn func(*bolt.Bucket) error) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(snapshotBucket)
		if bucket == nil {
			return errBucketMissing
		}
		return fn(bucket)
	})
}

// SeenSnapshot reports whether id was marked and has not expired. Expired or
// unreadable entries are dropped on the way.
func (b *boltStore) SeenSnapshot(id string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}
	now := time.Now()
	if err := b.sweep(now); err != nil {
		return false, err
	}

	var seen bool
	err := b.update(func(bucket *bolt.Bucket) error {
		raw := bucket.Get([]byte(id))
		if raw == nil {
			return nil
		}
		if rec, ok := decodeMarkRecord(raw); ok && rec.liveAt(now) {
			seen = true
			return nil
		}
		return bucket.Delete([]byte(id))
	})
	return seen, err
}

// MarkSnapshot records id until the TTL elapses.
func (b *boltStore) MarkSnapshot(id string) error {
	if b == nil || b.db == nil {
		return nil
	}
	now := time.Now()
	if err := b.sweep(now); err != nil {
		return err
	}
	rec := newMarkRecord(now, b.ttl)
	return b.update(func(bucket *bolt.Bucket) error {
		return bucket.Put([]byte(id), rec.encode())
	})
}

// sweep deletes expired fingerprints at most once per sweepEvery.
func (b *boltStore) sweep(now time.Time) error {
	due := func() bool {
		return now.Sub(time.Unix(b.lastSweepAt.Load(), 0)) >= b.sweepEvery
	}
	if !due() {
		return nil
	}

	b.sweepMu.Lock()
	defer b.sweepMu.Unlock()
	if !due() {
		return nil
	}

	err := b.update(func(bucket *bolt.Bucket) error {
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if rec, ok := decodeMarkRecord(v); ok && rec.liveAt(now) {
				continue
			}
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastSweepAt.Store(now.Unix())
	}
	return err
}
