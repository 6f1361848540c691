package storage

import (
	"time"

	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------
// NopStore is the degraded mode used when the real store cannot be opened.
// The process keeps running memory-only for the rest of the run; nothing is
// persisted and nothing is loaded.
// -----------------------------------------------------------------------------

type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (n *NopStore) Initialize() error { return nil }

func (n *NopStore) Prune(now time.Time, maxAge time.Duration) (int, error) { return 0, nil }

func (n *NopStore) Load(now time.Time, maxAge time.Duration) (map[string]models.MCacheEntry, error) {
	return map[string]models.MCacheEntry{}, nil
}

func (n *NopStore) SaveAll(entries map[string]models.MCacheEntry) error { return nil }

func (n *NopStore) Close() error { return nil }
