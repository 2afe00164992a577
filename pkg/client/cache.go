package client

import (
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

// SessionCache persists the mapping from an upload's identity to the server
// session id so an interrupted transfer can be resumed by a later process.
// A missing key yields ("", nil), not an error.
type SessionCache interface {
	Get(key string) (string, error)
	Put(key string, sessionID string) error
	Delete(key string) error
	Close() error
}

// SessionKey derives the cache key for an upload. Both the target path and
// the byte size participate: a changed file size must never resume an old
// session.
func SessionKey(targetPath string, totalSize int64) string {
	return fmt.Sprintf("%s\x00%d", targetPath, totalSize)
}

var sessionBucket = []byte("upload_sessions")

// BoltCache stores session ids in a single-file bbolt database.
type BoltCache struct {
	db *bbolt.DB
}

func OpenBoltCache(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(sessionBucket)
		return createErr
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init session cache: %w", err)
	}

	return &BoltCache{db: db}, nil
}

func (c *BoltCache) Get(key string) (string, error) {
	var sessionID string
	err := c.db.View(func(tx *bbolt.Tx) error {
		if value := tx.Bucket(sessionBucket).Get([]byte(key)); value != nil {
			sessionID = string(value)
		}
		return nil
	})
	return sessionID, err
}

func (c *BoltCache) Put(key string, sessionID string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Put([]byte(key), []byte(sessionID))
	})
}

func (c *BoltCache) Delete(key string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete([]byte(key))
	})
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}

// MemoryCache is a map-backed SessionCache for short-lived processes.
type MemoryCache struct {
	mu       sync.Mutex
	sessions map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{sessions: make(map[string]string)}
}

func (c *MemoryCache) Get(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[key], nil
}

func (c *MemoryCache) Put(key string, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[key] = sessionID
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, key)
	return nil
}

func (c *MemoryCache) Close() error { return nil }
