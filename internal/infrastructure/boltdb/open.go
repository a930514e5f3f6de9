package boltdb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names of the embedded credential store.
var (
	BucketUsers   = []byte("users")
	BucketByEmail = []byte("users_by_email")
	BucketByDay   = []byte("users_by_day")
)

// Open initializes the BoltDB file and ensures every bucket exists.
func Open(path string) (*bolt.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("boltdb: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{BucketUsers, BucketByEmail, BucketByDay} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltdb: create bucket %s: %w", name, err)
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Size returns the number of stored users.
func Size(db *bolt.DB) (int, error) {
	if db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(BucketUsers).Stats().KeyN
		return nil
	})
	return count, err
}
