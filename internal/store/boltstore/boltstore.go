// Package boltstore implements the domain repository contracts on top of
// an embedded bbolt database, grounded on the bucket/transaction shape of
// runar-rkmedia-donotnet's cache.DB (one bucket per kind, db.Update for
// writes, CreateBucketIfNotExists on open). Entities are JSON-encoded
// rather than the cache package's fixed binary layout, since Story carries
// several optional fields a hand-rolled byte layout would make brittle.
package boltstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketStories   = []byte("stories")
	bucketDevelopers = []byte("developers")
	bucketFeatures  = []byte("features")
	bucketConfig    = []byte("configuration")
)

const configKey = "singleton"

// errNotFound is the sentinel the get() helper returns when a key is
// absent; callers translate it into the appropriate domain *NotFoundError.
var errNotFound = errors.New("boltstore: key not found")

// Store wraps a bbolt database and implements every domain repository
// contract against it.
type Store struct {
	db *bolt.DB
}

// Open opens or creates a planning store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketStories, bucketDevelopers, bucketFeatures, bucketConfig} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func get[T any](db *bolt.DB, bucket []byte, key string) (T, error) {
	var out T
	err := db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucket).Get([]byte(key))
		if raw == nil {
			return errNotFound
		}
		return json.Unmarshal(raw, &out)
	})
	return out, err
}

func put(db *bolt.DB, bucket []byte, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), raw)
	})
}

func listAll[T any](db *bolt.DB, bucket []byte) ([]T, error) {
	var out []T
	err := db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(_, raw []byte) error {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			out = append(out, v)
			return nil
		})
	})
	return out, err
}
