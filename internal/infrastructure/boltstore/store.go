package boltstore

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store wraps BoltDB as an embedded key/value store with per-entry expiry.
// A second bucket holds generation counters that guard conditional writes.
type Store struct {
	db          *bolt.DB
	bucket      []byte
	generations []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "cache"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	generations := bucket + "_generations"
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucket, generations} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:          db,
		bucket:      []byte(bucket),
		generations: []byte(generations),
	}, nil
}

func encodeEntry(value []byte, ttl time.Duration) ([]byte, error) {
	now := time.Now()
	entry := Entry{Value: value, StoredAt: now}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}
	return json.Marshal(entry)
}

func readGeneration(b *bolt.Bucket, key string) uint64 {
	raw := b.Get([]byte(key))
	if len(raw) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

// Put replaces the value stored under key.
func (s *Store) Put(key string, value []byte, ttl time.Duration) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	payload, err := encodeEntry(value, ttl)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), payload)
	})
}

// Generation returns the counter stored under genKey, 0 when never bumped.
func (s *Store) Generation(genKey string) (uint64, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var gen uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		gen = readGeneration(tx.Bucket(s.generations), genKey)
		return nil
	})
	return gen, err
}

// PutAtGeneration stores value under key only while genKey still holds
// generation. The check and the write share one transaction.
func (s *Store) PutAtGeneration(key, genKey string, generation uint64, value []byte, ttl time.Duration) (bool, error) {
	if s == nil || s.db == nil {
		return false, bolt.ErrDatabaseNotOpen
	}
	payload, err := encodeEntry(value, ttl)
	if err != nil {
		return false, err
	}
	stored := false
	err = s.db.Update(func(tx *bolt.Tx) error {
		if readGeneration(tx.Bucket(s.generations), genKey) != generation {
			return nil
		}
		stored = true
		return tx.Bucket(s.bucket).Put([]byte(key), payload)
	})
	return stored, err
}

// Invalidate deletes each key and bumps its generation counter in one
// transaction. keys and genKeys are paired by index.
func (s *Store) Invalidate(keys, genKeys []string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, gens := tx.Bucket(s.bucket), tx.Bucket(s.generations)
		for i, k := range keys {
			if err := data.Delete([]byte(k)); err != nil {
				return err
			}
			if i >= len(genKeys) {
				continue
			}
			next := make([]byte, 8)
			binary.BigEndian.PutUint64(next, readGeneration(gens, genKeys[i])+1)
			if err := gens.Put([]byte(genKeys[i]), next); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get returns the live value under key. Expired entries read as missing.
func (s *Store) Get(key string) ([]byte, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, bolt.ErrDatabaseNotOpen
	}
	var (
		value []byte
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil
		}
		if entry.Expired(time.Now()) {
			return nil
		}
		// bolt memory is only valid inside the transaction
		value = append([]byte(nil), entry.Value...)
		found = true
		return nil
	})
	return value, found, err
}

// Delete removes the provided keys.
func (s *Store) Delete(keys ...string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Size returns the number of stored entries, expired ones included.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Sweep removes entries expired at now along with undecodable ones.
func (s *Store) Sweep(now time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var removed int
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err == nil && !entry.Expired(now) {
				continue
			}
			if err := c.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}
