package boltstore

import (
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/kingrea/waveplan/internal/domain"
)

// FeatureStore implements domain.FeatureRepository.
type FeatureStore struct{ s *Store }

// Features returns the feature repository view of s.
func (s *Store) Features() *FeatureStore { return &FeatureStore{s: s} }

func (f *FeatureStore) FindAll() ([]domain.Feature, error) {
	return listAll[domain.Feature](f.s.db, bucketFeatures)
}

func (f *FeatureStore) FindByID(id string) (domain.Feature, error) {
	feature, err := get[domain.Feature](f.s.db, bucketFeatures, id)
	if errors.Is(err, errNotFound) {
		return domain.Feature{}, &domain.FeatureNotFoundError{ID: id}
	}
	if err != nil {
		return domain.Feature{}, fmt.Errorf("boltstore: find feature %s: %w", id, err)
	}
	return feature, nil
}

func (f *FeatureStore) FindByWave(wave int) (domain.Feature, error) {
	all, err := f.FindAll()
	if err != nil {
		return domain.Feature{}, err
	}
	for _, feature := range all {
		if feature.Wave == wave {
			return feature, nil
		}
	}
	return domain.Feature{}, fmt.Errorf("boltstore: no feature owns wave %d", wave)
}

func (f *FeatureStore) Exists(id string) (bool, error) {
	_, err := f.FindByID(id)
	if err == nil {
		return true, nil
	}
	var notFound *domain.FeatureNotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, err
}

func (f *FeatureStore) WaveExists(wave int) (bool, error) {
	all, err := f.FindAll()
	if err != nil {
		return false, err
	}
	for _, feature := range all {
		if feature.Wave == wave {
			return true, nil
		}
	}
	return false, nil
}

func (f *FeatureStore) CountStoriesByFeature(id string) (int, error) {
	stories, err := f.s.FindAll()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, story := range stories {
		if story.FeatureID != nil && *story.FeatureID == id {
			count++
		}
	}
	return count, nil
}

func (f *FeatureStore) Save(feature domain.Feature) error {
	owner, err := f.WaveExists(feature.Wave)
	if err != nil {
		return err
	}
	if owner {
		existing, err := f.FindByWave(feature.Wave)
		if err == nil && existing.ID != feature.ID {
			return &domain.DuplicateWaveError{Wave: feature.Wave, ExistingName: existing.Name}
		}
	}
	return put(f.s.db, bucketFeatures, feature.ID, feature)
}

func (f *FeatureStore) Delete(id string) error {
	count, err := f.CountStoriesByFeature(id)
	if err != nil {
		return err
	}
	if count > 0 {
		feature, _ := f.FindByID(id)
		return &domain.FeatureHasStoriesError{ID: id, Name: feature.Name, Count: count}
	}
	return f.s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFeatures).Delete([]byte(id))
	})
}
