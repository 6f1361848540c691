package interfaces

import (
	"time"

	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------
// ICacheStore defines the contract for the persistent quote cache.
// -----------------------------------------------------------------------------

type ICacheStore interface {

	// Initialize sets up the schema. Idempotent.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Prune deletes all records older than now-maxAge and reports how many
	// rows were removed.
	Prune(now time.Time, maxAge time.Duration) (int, error)

	// -----------------------------------------------------------------------------

	// Load returns all records no older than now-maxAge, keyed by symbol.
	// Records outside the window stay on disk but are not returned.
	Load(now time.Time, maxAge time.Duration) (map[string]models.MCacheEntry, error)

	// -----------------------------------------------------------------------------

	// SaveAll upserts the given entries in a single transaction. An entry
	// that cannot be serialized is skipped; the rest proceed.
	SaveAll(entries map[string]models.MCacheEntry) error

	// -----------------------------------------------------------------------------

	// Close the database connection. Idempotent.
	Close() error
}
