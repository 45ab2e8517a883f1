package boltstore

import (
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/kingrea/waveplan/internal/domain"
)

// FindAll returns every story in the store.
func (s *Store) FindAll() ([]domain.Story, error) {
	return listAll[domain.Story](s.db, bucketStories)
}

// FindByID returns a single story, or StoryNotFoundError if absent.
func (s *Store) FindByID(id string) (domain.Story, error) {
	story, err := get[domain.Story](s.db, bucketStories, id)
	if errors.Is(err, errNotFound) {
		return domain.Story{}, &domain.StoryNotFoundError{ID: id}
	}
	if err != nil {
		return domain.Story{}, fmt.Errorf("boltstore: find story %s: %w", id, err)
	}
	return story, nil
}

// Save persists a single story.
func (s *Store) Save(story domain.Story) error {
	if err := put(s.db, bucketStories, story.ID, story); err != nil {
		return fmt.Errorf("boltstore: save story %s: %w", story.ID, err)
	}
	return nil
}

// SaveBatch persists every story in a single bbolt transaction, matching
// the repository contract's atomicity requirement for the allocator's
// end-of-run write.
func (s *Store) SaveBatch(stories []domain.Story) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketStories)
		for _, story := range stories {
			raw, err := json.Marshal(story)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(story.ID), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadFeature hydrates s.Wave from the linked feature, leaving Wave at 0
// when FeatureID is nil (the story belongs to no feature and never gates
// other waves).
func (s *Store) LoadFeature(story *domain.Story) error {
	if story.FeatureID == nil {
		story.Wave = 0
		return nil
	}
	feature, err := get[domain.Feature](s.db, bucketFeatures, *story.FeatureID)
	if errors.Is(err, errNotFound) {
		return &domain.FeatureNotFoundError{ID: *story.FeatureID}
	}
	if err != nil {
		return fmt.Errorf("boltstore: load feature for story %s: %w", story.ID, err)
	}
	story.Wave = feature.Wave
	return nil
}
