package quotes

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"stocksdash/src/cache"
	"stocksdash/src/freshness"
	"stocksdash/src/helpers"
	"stocksdash/src/interfaces"
	"stocksdash/src/logger"
	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------
// Engine is the gatekeeper between consumers and the remote quote API. For
// any requested symbol set it decides, per symbol, whether the in-memory
// cache is fresh enough to serve or a fetch is needed, submits all misses
// as one batch, and assembles the response in the caller's order.
// -----------------------------------------------------------------------------

type Engine struct {
	Config   *models.MConfig
	Cache    *cache.MemoryCache
	Store    interfaces.ICacheStore
	Provider interfaces.IQuoteProvider
	Policy   *freshness.Policy
	Logger   *logger.Logger

	async dispatcher

	// now is swappable for tests
	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewEngine(
	cfg *models.MConfig,
	memCache *cache.MemoryCache,
	store interfaces.ICacheStore,
	provider interfaces.IQuoteProvider,
	policy *freshness.Policy,
) *Engine {
	return &Engine{
		Config:   cfg,
		Cache:    memCache,
		Store:    store,
		Provider: provider,
		Policy:   policy,
		Logger:   logger.NewLogger("QuoteEngine"),
		now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

// NormalizeSymbols uppercases, drops empty entries and de-duplicates while
// preserving first-occurrence order.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))

	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// -----------------------------------------------------------------------------

// GetQuotes returns one quote per distinct requested symbol, in request
// order. Symbols with fresh cached data are served from memory; the rest go
// to the remote in a single batched call. A failure of that call never
// propagates: every affected symbol gets a "Data Unavailable" placeholder,
// cached like any other result.
func (e *Engine) GetQuotes(ctx context.Context, symbols []string, forceRefresh bool) []models.MQuote {
	valid := NormalizeSymbols(symbols)
	if len(valid) == 0 {
		return []models.MQuote{}
	}

	now := e.now().UTC()

	var toFetch []string
	if forceRefresh {
		toFetch = valid
	} else {
		for _, symbol := range valid {
			entry, ok := e.Cache.Get(symbol)
			if ok && e.Policy.IsFresh(e.Cache.GetInfo(symbol), entry.Timestamp, now) {
				continue // fresh enough, skip
			}
			toFetch = append(toFetch, symbol)
		}
	}

	if len(toFetch) > 0 {
		e.fetchBatch(ctx, toFetch)
	}

	// Assemble in the original normalized order. Every fetched symbol has a
	// cache entry by now (failures write placeholders), so in practice
	// nothing is omitted.
	result := make([]models.MQuote, 0, len(valid))
	for _, symbol := range valid {
		if entry, ok := e.Cache.Get(symbol); ok {
			result = append(result, entry.Quote)
		}
	}
	return result
}

// -----------------------------------------------------------------------------

// fetchBatch submits one remote call for all missing symbols and merges the
// results into the cache under a single completion timestamp.
func (e *Engine) fetchBatch(ctx context.Context, symbols []string) {
	requestID := uuid.NewString()
	e.Logger.Debug("Fetching %d symbols (request %s)", len(symbols), requestID)

	results, err := e.Provider.FetchBatch(ctx, symbols)
	batchTime := e.now().UTC()

	if err != nil {
		// Transport-level failure: freeze a placeholder for every symbol so
		// the batch is not retried until its freshness window lapses.
		e.Logger.Warning("Batch fetch failed (request %s): %v", requestID, err)
		for _, symbol := range symbols {
			e.Cache.Set(symbol, models.PlaceholderQuote(symbol, models.DescDataUnavailable), batchTime)
			e.Cache.SetInfo(symbol, models.MInfoResult{State: models.InfoFailed})
		}
		return
	}

	for _, r := range results {
		e.Cache.Set(r.Symbol, r.Quote, batchTime)
		e.Cache.SetInfo(r.Symbol, r.Info)
	}

	e.Logger.Info("Fetched %d/%d symbols (request %s)", len(results), len(symbols), requestID)
}

// -----------------------------------------------------------------------------

// IsCached reports whether a symbol has any price entry in memory,
// regardless of freshness.
func (e *Engine) IsCached(symbol string) bool {
	_, ok := e.Cache.Get(strings.ToUpper(strings.TrimSpace(symbol)))
	return ok
}

// -----------------------------------------------------------------------------

// CachedQuote returns the cached quote for a symbol without ever triggering
// a fetch. Returns nil when nothing is cached.
func (e *Engine) CachedQuote(symbol string) *models.MQuote {
	entry, ok := e.Cache.Get(strings.ToUpper(strings.TrimSpace(symbol)))
	if !ok {
		return nil
	}
	q := entry.Quote
	return &q
}

// -----------------------------------------------------------------------------

// Info returns static metadata for a symbol. Cache hits (including cached
// failures) return without a remote call; a miss triggers a dedicated
// lookup whose outcome, success or failure, is cached for the rest of the
// run.
func (e *Engine) Info(ctx context.Context, symbol string) models.MInfoResult {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return models.MInfoResult{State: models.InfoFailed}
	}

	if cached := e.Cache.GetInfo(sym); cached.State != models.InfoUnknown {
		return cached
	}

	result, err := e.Provider.FetchInfo(ctx, sym)
	if err != nil || result.State != models.InfoKnown {
		e.Logger.Warning("Info lookup failed for %s", sym)
		failed := models.MInfoResult{State: models.InfoFailed}
		e.Cache.SetInfo(sym, failed)
		return failed
	}

	e.Cache.SetInfo(sym, result)
	return result
}

// -----------------------------------------------------------------------------

// News returns recent articles for a symbol, cached for the configured news
// window. A symbol whose static info cannot be resolved yields an
// InvalidSymbolError rather than an empty list, so callers can tell "no
// news" from "bad symbol".
func (e *Engine) News(ctx context.Context, symbol string) ([]models.MNewsArticle, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return []models.MNewsArticle{}, nil
	}

	now := e.now().UTC()
	window := time.Duration(e.Config.Cache.NewsWindowSeconds) * time.Second

	if entry, ok := e.Cache.GetNews(sym); ok && now.Sub(entry.Timestamp) < window {
		return entry.Articles, nil
	}

	if info := e.Info(ctx, sym); info.State != models.InfoKnown {
		return nil, helpers.NewInvalidSymbolError(sym)
	}

	articles, err := e.Provider.FetchNews(ctx, sym)
	if err != nil {
		e.Logger.Warning("News fetch failed for %s: %v", sym, err)
		return nil, helpers.NewNetworkError("news fetch failed", err)
	}

	e.Cache.SetNews(sym, articles, e.now().UTC())
	return articles, nil
}

// -----------------------------------------------------------------------------

// History returns OHLCV bars for a symbol. Invalid symbols short-circuit
// through the static-info cache without hitting the chart endpoint.
func (e *Engine) History(ctx context.Context, symbol, rng, interval string) ([]models.MCandle, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return nil, helpers.NewInvalidSymbolError(symbol)
	}

	if info := e.Info(ctx, sym); info.State != models.InfoKnown {
		return nil, helpers.NewInvalidSymbolError(sym)
	}

	candles, err := e.Provider.FetchHistory(ctx, sym, rng, interval)
	if err != nil {
		e.Logger.Warning("History fetch failed for %s: %v", sym, err)
		return nil, helpers.NewNetworkError("history fetch failed", err)
	}
	return candles, nil
}

// -----------------------------------------------------------------------------

// PortfolioQuotes fetches quotes for a named symbol list and echoes the
// name and normalized symbols back, for consumers tracking several views.
func (e *Engine) PortfolioQuotes(ctx context.Context, name string, symbols []string, forceRefresh bool) (string, []string, []models.MQuote) {
	valid := NormalizeSymbols(symbols)
	return name, valid, e.GetQuotes(ctx, valid, forceRefresh)
}

// -----------------------------------------------------------------------------
// Persistence lifecycle
// -----------------------------------------------------------------------------

// LoadAtStartup prunes the persistent store, loads the recent window and
// seeds the in-memory cache. Storage failures degrade to an empty cache;
// they are logged, never propagated.
func (e *Engine) LoadAtStartup() {
	now := e.now().UTC()

	pruneAge := time.Duration(e.Config.Cache.PruneAfterDays) * 24 * time.Hour
	if _, err := e.Store.Prune(now, pruneAge); err != nil {
		e.Logger.Error("Failed to prune persistent cache: %v", err)
	}

	loadAge := time.Duration(e.Config.Cache.LoadWindowHours) * time.Hour
	loaded, err := e.Store.Load(now, loadAge)
	if err != nil {
		e.Logger.Error("Failed to load persistent cache: %v", err)
		return
	}

	e.Cache.Seed(loaded)
	e.Logger.Info("In-memory cache seeded with %d items", len(loaded))
}

// -----------------------------------------------------------------------------

// FlushAtShutdown writes the in-memory cache back to the persistent store.
func (e *Engine) FlushAtShutdown() {
	snapshot := e.Cache.SnapshotAll()
	if err := e.Store.SaveAll(snapshot); err != nil {
		e.Logger.Error("Failed to flush cache to persistent store: %v", err)
	}
}
