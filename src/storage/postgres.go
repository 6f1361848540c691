package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"stocksdash/src/logger"
	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------

type PostgresCacheStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresCacheStore(cfg *models.MConfig, log *logger.Logger) (*PostgresCacheStore, error) {
	return &PostgresCacheStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresCacheStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	query := `
		CREATE TABLE IF NOT EXISTS quote_cache (
			symbol TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			timestamp BIGINT NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create quote_cache: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresCacheStore) Prune(now time.Time, maxAge time.Duration) (int, error) {
	cutoff := now.Add(-maxAge).Unix()

	res, err := d.DB.Exec("DELETE FROM quote_cache WHERE timestamp < $1", cutoff)
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

func (d *PostgresCacheStore) Load(now time.Time, maxAge time.Duration) (map[string]models.MCacheEntry, error) {
	cutoff := now.Add(-maxAge).Unix()

	rows, err := d.DB.Query("SELECT symbol, data, timestamp FROM quote_cache WHERE timestamp >= $1", cutoff)
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

func (d *PostgresCacheStore) SaveAll(entries map[string]models.MCacheEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO quote_cache (symbol, data, timestamp)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol) DO UPDATE SET
			data = excluded.data,
			timestamp = excluded.timestamp
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

func (d *PostgresCacheStore) Close() error {
	if d.DB != nil {
		err := d.DB.Close()
		d.DB = nil
		return err
	}
	return nil
}
