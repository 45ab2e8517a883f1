package boltstore

import (
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/kingrea/waveplan/internal/domain"
)

// ConfigStore implements domain.ConfigurationRepository over the
// configuration singleton bucket.
type ConfigStore struct{ s *Store }

// Configuration returns the configuration repository view of s.
func (s *Store) Configuration() *ConfigStore { return &ConfigStore{s: s} }

func (c *ConfigStore) Get() (domain.Configuration, error) {
	var cfg domain.Configuration
	err := c.s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketConfig).Get([]byte(configKey))
		if raw == nil {
			return errNotFound
		}
		return json.Unmarshal(raw, &cfg)
	})
	if errors.Is(err, errNotFound) {
		return domain.Configuration{
			StoryPointsPerSprint: 21,
			WorkdaysPerSprint:    15,
			AllocationCriteria:   domain.CriteriaLoadBalancing,
			MaxIdleDays:          2,
		}, nil
	}
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("boltstore: load configuration: %w", err)
	}
	return cfg, nil
}

func (c *ConfigStore) Save(cfg domain.Configuration) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return c.s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketConfig).Put([]byte(configKey), raw)
	})
}
