package boltstore

import (
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/kingrea/waveplan/internal/domain"
)

// DeveloperStore implements domain.DeveloperRepository. It is a thin view
// over the shared Store since Go cannot have a single type satisfy two
// interfaces that reuse method names (Story/Developer/Feature all have a
// FindAll/FindByID/Save).
type DeveloperStore struct{ s *Store }

// Developers returns the developer repository view of s.
func (s *Store) Developers() *DeveloperStore { return &DeveloperStore{s: s} }

func (d *DeveloperStore) FindAll() ([]domain.Developer, error) {
	return listAll[domain.Developer](d.s.db, bucketDevelopers)
}

func (d *DeveloperStore) FindByID(id string) (domain.Developer, error) {
	dev, err := get[domain.Developer](d.s.db, bucketDevelopers, id)
	if errors.Is(err, errNotFound) {
		return domain.Developer{}, &domain.DeveloperNotFoundError{ID: id}
	}
	if err != nil {
		return domain.Developer{}, fmt.Errorf("boltstore: find developer %s: %w", id, err)
	}
	return dev, nil
}

func (d *DeveloperStore) Save(dev domain.Developer) error {
	if err := put(d.s.db, bucketDevelopers, dev.ID, dev); err != nil {
		return fmt.Errorf("boltstore: save developer %s: %w", dev.ID, err)
	}
	return nil
}

func (d *DeveloperStore) Delete(id string) error {
	return d.s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDevelopers).Delete([]byte(id))
	})
}
