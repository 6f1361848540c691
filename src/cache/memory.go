package cache

import (
	"sync"
	"time"

	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------
// MemoryCache is the process-lifetime quote cache. It owns three
// independent maps: price entries, static info and news. Each map has its
// own lock, held only for the duration of a single read or write — partial
// visibility of a batch write is harmless because every entry carries its
// own timestamp and last write wins.
// -----------------------------------------------------------------------------

type MemoryCache struct {
	prices   map[string]models.MCacheEntry
	pricesMu sync.RWMutex

	info   map[string]models.MInfoResult
	infoMu sync.RWMutex

	news   map[string]models.MNewsEntry
	newsMu sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		prices: make(map[string]models.MCacheEntry),
		info:   make(map[string]models.MInfoResult),
		news:   make(map[string]models.MNewsEntry),
	}
}

// -----------------------------------------------------------------------------
// Price entries
// -----------------------------------------------------------------------------

func (c *MemoryCache) Get(symbol string) (models.MCacheEntry, bool) {
	c.pricesMu.RLock()
	defer c.pricesMu.RUnlock()

	entry, ok := c.prices[symbol]
	return entry, ok
}

// -----------------------------------------------------------------------------

func (c *MemoryCache) Set(symbol string, quote models.MQuote, ts time.Time) {
	c.pricesMu.Lock()
	defer c.pricesMu.Unlock()

	c.prices[symbol] = models.MCacheEntry{Symbol: symbol, Timestamp: ts, Quote: quote}
}

// -----------------------------------------------------------------------------

// BulkSet writes a batch of fetched quotes under one shared timestamp.
func (c *MemoryCache) BulkSet(quotes []models.MQuote, ts time.Time) {
	for _, q := range quotes {
		c.Set(q.Symbol, q, ts)
	}
}

// -----------------------------------------------------------------------------

// Seed merges persisted entries into the cache at startup. It runs before
// any fetch, so a plain overwrite is correct.
func (c *MemoryCache) Seed(initial map[string]models.MCacheEntry) {
	c.pricesMu.Lock()
	defer c.pricesMu.Unlock()

	for symbol, entry := range initial {
		c.prices[symbol] = entry
	}
}

// -----------------------------------------------------------------------------

// SnapshotAll copies the current price map for the persistence flush.
func (c *MemoryCache) SnapshotAll() map[string]models.MCacheEntry {
	c.pricesMu.RLock()
	defer c.pricesMu.RUnlock()

	snapshot := make(map[string]models.MCacheEntry, len(c.prices))
	for symbol, entry := range c.prices {
		snapshot[symbol] = entry
	}
	return snapshot
}

// -----------------------------------------------------------------------------

func (c *MemoryCache) Len() int {
	c.pricesMu.RLock()
	defer c.pricesMu.RUnlock()
	return len(c.prices)
}

// -----------------------------------------------------------------------------
// Static info
// -----------------------------------------------------------------------------

// GetInfo returns the tri-state lookup result for a symbol. The zero value
// (InfoUnknown) means no lookup has been attempted this run.
func (c *MemoryCache) GetInfo(symbol string) models.MInfoResult {
	c.infoMu.RLock()
	defer c.infoMu.RUnlock()
	return c.info[symbol]
}

// -----------------------------------------------------------------------------

// SetInfo records a lookup outcome. A failed lookup is cached too, so a
// known-bad symbol is not retried until the next run.
func (c *MemoryCache) SetInfo(symbol string, result models.MInfoResult) {
	c.infoMu.Lock()
	defer c.infoMu.Unlock()
	c.info[symbol] = result
}

// -----------------------------------------------------------------------------
// News
// -----------------------------------------------------------------------------

func (c *MemoryCache) GetNews(symbol string) (models.MNewsEntry, bool) {
	c.newsMu.RLock()
	defer c.newsMu.RUnlock()

	entry, ok := c.news[symbol]
	return entry, ok
}

// -----------------------------------------------------------------------------

func (c *MemoryCache) SetNews(symbol string, articles []models.MNewsArticle, ts time.Time) {
	c.newsMu.Lock()
	defer c.newsMu.Unlock()

	c.news[symbol] = models.MNewsEntry{Timestamp: ts, Articles: articles}
}
