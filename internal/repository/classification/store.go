// Package classification persists classification outcomes as JSON
// values in a key-value store, expiring after a configurable retention.
package classification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fleetscope/shipdex/internal/db"
	"github.com/fleetscope/shipdex/internal/domain"
	dclass "github.com/fleetscope/shipdex/internal/domain/classification"
)

var keyPrefix = domain.KeyPrefix + "classification:"

// DefaultTTL keeps stored classifications for a day.
const DefaultTTL = 24 * time.Hour

// store is the consumer interface for classification persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store implements the classify Store contract on a key-value store.
type Store struct {
	store store
	ttl   time.Duration
}

// New creates a classification store. A non-positive ttl falls back to
// DefaultTTL.
func New(s store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{store: s, ttl: ttl}
}

// Save stores one classification under its id.
func (s *Store) Save(ctx context.Context, c dclass.Classification) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal classification %s: %w", c.ID, err)
	}
	if err := s.store.SetWithTTL(ctx, keyPrefix+c.ID, data, s.ttl); err != nil {
		return fmt.Errorf("store classification %s: %w", c.ID, err)
	}
	return nil
}

// Get retrieves a classification by id. Expired and unknown ids map to
// ErrClassificationNotFound.
func (s *Store) Get(ctx context.Context, id string) (dclass.Classification, error) {
	data, err := s.store.Get(ctx, keyPrefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dclass.Classification{}, domain.ErrClassificationNotFound
		}
		return dclass.Classification{}, fmt.Errorf("load classification %s: %w", id, err)
	}

	var c dclass.Classification
	if err := json.Unmarshal(data, &c); err != nil {
		return dclass.Classification{}, fmt.Errorf("decode classification %s: %w", id, err)
	}
	return c, nil
}
