package daemonconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store persists the selected config path across process invocations.
// Get returns "" when nothing has been stored yet.
type Store interface {
	Get() (string, error)
	Set(path string) error
}

var (
	selectionBucket = []byte("selection")
	configPathKey   = []byte("config_path")
)

// ErrStoreClosed is returned by BoltStore after Close.
var ErrStoreClosed = errors.New("selection store is closed")

// BoltStore keeps the selection in a bbolt database file.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the selection database at path.
// Parent directories are created with user-only permissions. Opening fails
// after one second if another process holds the database.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open selection store %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(selectionBucket)
		return createErr
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init selection store: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Get returns the stored path, or "" if none is stored.
func (s *BoltStore) Get() (string, error) {
	if s == nil || s.db == nil {
		return "", ErrStoreClosed
	}
	var path string
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(selectionBucket)
		if bucket == nil {
			return nil
		}
		// Copy: the slice is only valid inside the transaction.
		path = string(bucket.Get(configPathKey))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read selection: %w", err)
	}
	return path, nil
}

// Set stores path, replacing any previous value.
func (s *BoltStore) Set(path string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(selectionBucket)
		if err != nil {
			return err
		}
		return bucket.Put(configPathKey, []byte(path))
	})
	if err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	return nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// MemoryStore keeps the selection in memory only.
type MemoryStore struct {
	mu   sync.Mutex
	path string
}

// NewMemoryStore creates a MemoryStore holding initial.
func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{path: initial}
}

// Get returns the stored path.
func (s *MemoryStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path, nil
}

// Set replaces the stored path.
func (s *MemoryStore) Set(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	return nil
}
