package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"stocksdash/src/logger"
	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------

type SQLiteCacheStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteCacheStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteCacheStore, error) {
	return &SQLiteCacheStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteCacheStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Ensure the parent directory exists
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteCacheStore) createTables() error {
	// Quote payloads are stored as JSON text; timestamp is a Unix timestamp.
	// The PRIMARY KEY on symbol gives INSERT OR REPLACE upsert semantics.
	query := `
		CREATE TABLE IF NOT EXISTS quote_cache (
			symbol TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			timestamp INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create quote_cache: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Prune deletes records older than now-maxAge and reports the row count.
func (d *SQLiteCacheStore) Prune(now time.Time, maxAge time.Duration) (int, error) {
	cutoff := now.Add(-maxAge).Unix()

	res, err := d.DB.Exec("DELETE FROM quote_cache WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune quote_cache: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		d.Logger.Info("Pruned %d expired entries from the persistent cache", deleted)
	}
	return int(deleted), nil
}

// -----------------------------------------------------------------------------

// Load returns records no older than now-maxAge. A row whose payload fails
// to deserialize is skipped; it does not abort loading the rest.
func (d *SQLiteCacheStore) Load(now time.Time, maxAge time.Duration) (map[string]models.MCacheEntry, error) {
	cutoff := now.Add(-maxAge).Unix()

	rows, err := d.DB.Query("SELECT symbol, data, timestamp FROM quote_cache WHERE timestamp >= ?", cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load quote_cache: %w", err)
	}
	defer rows.Close()

	loaded := make(map[string]models.MCacheEntry)
	for rows.Next() {
		var symbol, data string
		var ts int64
		if err := rows.Scan(&symbol, &data, &ts); err != nil {
			d.Logger.Warning("Failed to scan cache row: %v", err)
			continue
		}

		var quote models.MQuote
		if err := json.Unmarshal([]byte(data), &quote); err != nil {
			d.Logger.Warning("Failed to decode cached data for symbol '%s': %v", symbol, err)
			continue
		}

		loaded[symbol] = models.MCacheEntry{
			Symbol:    symbol,
			Timestamp: time.Unix(ts, 0).UTC(),
			Quote:     quote,
		}
	}
	if err := rows.Err(); err != nil {
		return loaded, err
	}

	d.Logger.Info("Loaded %d fresh items from the persistent cache", len(loaded))
	return loaded, nil
}

// -----------------------------------------------------------------------------

// SaveAll upserts every entry in one transaction. Entries that cannot be
// serialized are skipped and logged; the rest land atomically.
func (d *SQLiteCacheStore) SaveAll(entries map[string]models.MCacheEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO quote_cache (symbol, data, timestamp)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	saved := 0
	for symbol, entry := range entries {
		data, err := json.Marshal(entry.Quote)
		if err != nil {
			d.Logger.Warning("Could not serialize data for symbol '%s': %v", symbol, err)
			continue
		}

		if _, err := stmt.Exec(symbol, string(data), entry.Timestamp.Unix()); err != nil {
			return err
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	d.Logger.Info("Saved %d items to the persistent cache", saved)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteCacheStore) Close() error {
	if d.DB != nil {
		err := d.DB.Close()
		d.DB = nil
		return err
	}
	return nil
}
