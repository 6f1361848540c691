package quotes

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"stocksdash/src/cache"
	"stocksdash/src/freshness"
	"stocksdash/src/models"
	"stocksdash/src/storage"
)

// -----------------------------------------------------------------------------
// Test fakes
// -----------------------------------------------------------------------------

type fakeProvider struct {
	calls   [][]string
	invalid map[string]bool
	failAll bool
}

func (p *fakeProvider) FetchBatch(ctx context.Context, symbols []string) ([]models.MFetchResult, error) {
	p.calls = append(p.calls, append([]string(nil), symbols...))

	if p.failAll {
		return nil, errors.New("connection reset")
	}

	results := make([]models.MFetchResult, 0, len(symbols))
	for _, s := range symbols {
		if p.invalid[s] {
			results = append(results, models.MFetchResult{
				Symbol: s,
				Quote:  models.PlaceholderQuote(s, models.DescInvalidTicker),
				Info:   models.MInfoResult{State: models.InfoFailed},
			})
			continue
		}

		price := 100.0
		results = append(results, models.MFetchResult{
			Symbol: s,
			Quote:  models.MQuote{Symbol: s, Description: s + " Inc.", Price: &price},
			Info: models.MInfoResult{
				State: models.InfoKnown,
				Info:  models.MStaticInfo{Exchange: "NMS", LongName: s + " Inc."},
			},
		})
	}
	return results, nil
}

func (p *fakeProvider) FetchInfo(ctx context.Context, symbol string) (models.MInfoResult, error) {
	results, err := p.FetchBatch(ctx, []string{symbol})
	if err != nil {
		return models.MInfoResult{}, err
	}
	return results[0].Info, nil
}

func (p *fakeProvider) FetchHistory(ctx context.Context, symbol, rng, interval string) ([]models.MCandle, error) {
	return []models.MCandle{{Symbol: symbol, Timestamp: 1700000000, Close: 101}}, nil
}

func (p *fakeProvider) FetchNews(ctx context.Context, symbol string) ([]models.MNewsArticle, error) {
	return []models.MNewsArticle{{Title: "headline for " + symbol}}, nil
}

// -----------------------------------------------------------------------------

func testConfig() *models.MConfig {
	return &models.MConfig{
		Name: "test",
		Cache: models.MCacheConfig{
			OpenWindowSeconds:   300,
			ClosedWindowSeconds: 86400,
			NewsWindowSeconds:   86400,
			LoadWindowHours:     24,
			PruneAfterDays:      7,
		},
	}
}

func newTestEngine(t *testing.T, provider *fakeProvider, marketOpen bool) *Engine {
	t.Helper()

	cfg := testConfig()
	status := func(exchange string) models.MMarketStatus {
		if marketOpen {
			return models.MMarketStatus{IsOpen: true, Status: models.SessionOpen, Calendar: exchange}
		}
		return models.MMarketStatus{IsOpen: false, Status: models.SessionClosed, Calendar: exchange}
	}

	return NewEngine(cfg, cache.NewMemoryCache(), storage.NewNopStore(),
		provider, freshness.NewPolicy(cfg.Cache, status))
}

// -----------------------------------------------------------------------------
// Gating
// -----------------------------------------------------------------------------

func TestGetQuotesNormalizesAndPreservesOrder(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, true)

	result := engine.GetQuotes(context.Background(), []string{"aapl", "MSFT", "aapl", "", " msft "}, false)

	if len(result) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(result))
	}
	if result[0].Symbol != "AAPL" || result[1].Symbol != "MSFT" {
		t.Fatalf("unexpected order: %s, %s", result[0].Symbol, result[1].Symbol)
	}

	if len(provider.calls) != 1 {
		t.Fatalf("expected 1 batch call, got %d", len(provider.calls))
	}
	if len(provider.calls[0]) != 2 {
		t.Fatalf("expected batch of 2 symbols, got %v", provider.calls[0])
	}
}

func TestGetQuotesEmptyInputNoSideEffects(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, true)

	result := engine.GetQuotes(context.Background(), []string{"", "  "}, false)

	if len(result) != 0 {
		t.Fatalf("expected empty result, got %d quotes", len(result))
	}
	if len(provider.calls) != 0 {
		t.Fatalf("expected no remote calls, got %d", len(provider.calls))
	}
	if engine.Cache.Len() != 0 {
		t.Fatalf("cache should be untouched, has %d entries", engine.Cache.Len())
	}
}

func TestGetQuotesSecondCallServedFromCache(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, true)

	first := engine.GetQuotes(context.Background(), []string{"AAPL", "MSFT"}, false)
	second := engine.GetQuotes(context.Background(), []string{"AAPL", "MSFT"}, false)

	if len(provider.calls) != 1 {
		t.Fatalf("second call should be cache-only, got %d remote calls", len(provider.calls))
	}

	if len(first) != len(second) {
		t.Fatalf("result length changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Symbol != second[i].Symbol || first[i].Description != second[i].Description {
			t.Fatalf("result %d differs between calls: %#v vs %#v", i, first[i], second[i])
		}
	}
}

func TestGetQuotesForceRefreshBypassesCache(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, true)

	engine.GetQuotes(context.Background(), []string{"AAPL"}, false)
	engine.GetQuotes(context.Background(), []string{"AAPL"}, true)

	if len(provider.calls) != 2 {
		t.Fatalf("force refresh should always fetch, got %d remote calls", len(provider.calls))
	}
}

// -----------------------------------------------------------------------------
// Freshness boundaries
// -----------------------------------------------------------------------------

func TestFreshnessBoundaryOpenMarket(t *testing.T) {
	cases := []struct {
		age         time.Duration
		expectFetch bool
	}{
		{299 * time.Second, false},
		{301 * time.Second, true},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("age_%s", tc.age), func(t *testing.T) {
			provider := &fakeProvider{}
			engine := newTestEngine(t, provider, true)

			// First fetch learns the exchange and populates the cache.
			engine.GetQuotes(context.Background(), []string{"AAPL"}, false)
			if len(provider.calls) != 1 {
				t.Fatalf("setup fetch expected, got %d calls", len(provider.calls))
			}

			base := time.Now().UTC()
			engine.now = func() time.Time { return base.Add(tc.age) }

			engine.GetQuotes(context.Background(), []string{"AAPL"}, false)

			gotFetch := len(provider.calls) == 2
			if gotFetch != tc.expectFetch {
				t.Fatalf("age %s: fetch=%v, want %v", tc.age, gotFetch, tc.expectFetch)
			}
		})
	}
}

func TestClosedMarketUsesLongWindow(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, false)

	engine.GetQuotes(context.Background(), []string{"AAPL"}, false)

	// An hour old entry is stale for an open market but fresh for a closed one.
	base := time.Now().UTC()
	engine.now = func() time.Time { return base.Add(time.Hour) }

	engine.GetQuotes(context.Background(), []string{"AAPL"}, false)
	if len(provider.calls) != 1 {
		t.Fatalf("closed market should serve hour-old data from cache, got %d calls", len(provider.calls))
	}
}

func TestUnknownExchangeTreatedAsOpen(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, false)

	// Seed a cache entry with no static info: the exchange is unknown, so
	// the short open-market window applies even though the oracle says
	// every known market is closed.
	base := time.Now().UTC()
	engine.Cache.Set("MYST", models.MQuote{Symbol: "MYST", Description: "Mystery Corp"}, base.Add(-10*time.Minute))
	engine.now = func() time.Time { return base }

	engine.GetQuotes(context.Background(), []string{"MYST"}, false)

	if len(provider.calls) != 1 {
		t.Fatalf("unknown exchange should bias toward fetching, got %d calls", len(provider.calls))
	}
}

// -----------------------------------------------------------------------------
// Failure semantics
// -----------------------------------------------------------------------------

func TestInvalidTickerGetsPlaceholder(t *testing.T) {
	provider := &fakeProvider{invalid: map[string]bool{"BADTICKER": true}}
	engine := newTestEngine(t, provider, true)

	result := engine.GetQuotes(context.Background(), []string{"AAPL", "BADTICKER"}, false)

	if len(result) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result))
	}
	if result[0].Symbol != "AAPL" || result[0].IsPlaceholder() {
		t.Fatalf("AAPL should be a real quote: %#v", result[0])
	}

	bad := result[1]
	if bad.Description != models.DescInvalidTicker {
		t.Fatalf("expected %q, got %q", models.DescInvalidTicker, bad.Description)
	}
	if bad.Price != nil || bad.PreviousClose != nil || bad.DayLow != nil ||
		bad.DayHigh != nil || bad.FiftyTwoWeekLow != nil || bad.FiftyTwoWeekHigh != nil {
		t.Fatalf("placeholder must have all numeric fields nil: %#v", bad)
	}
}

func TestTransportFailureFreezesPlaceholders(t *testing.T) {
	provider := &fakeProvider{failAll: true}
	engine := newTestEngine(t, provider, true)

	result := engine.GetQuotes(context.Background(), []string{"AAPL", "MSFT"}, false)

	if len(result) != 2 {
		t.Fatalf("expected 2 placeholder records, got %d", len(result))
	}
	for _, q := range result {
		if q.Description != models.DescDataUnavailable {
			t.Fatalf("expected %q for %s, got %q", models.DescDataUnavailable, q.Symbol, q.Description)
		}
	}

	// The failure is cached: an immediate retry within the freshness window
	// must not hit the remote again.
	engine.GetQuotes(context.Background(), []string{"AAPL", "MSFT"}, false)
	if len(provider.calls) != 1 {
		t.Fatalf("failure should be frozen for one window, got %d calls", len(provider.calls))
	}
}

func TestTransientFailureRetriedAfterWindow(t *testing.T) {
	provider := &fakeProvider{failAll: true}
	engine := newTestEngine(t, provider, true)

	engine.GetQuotes(context.Background(), []string{"AAPL"}, false)

	base := time.Now().UTC()
	engine.now = func() time.Time { return base.Add(301 * time.Second) }
	provider.failAll = false

	result := engine.GetQuotes(context.Background(), []string{"AAPL"}, false)

	if len(provider.calls) != 2 {
		t.Fatalf("stale placeholder should be re-fetched, got %d calls", len(provider.calls))
	}
	if result[0].IsPlaceholder() {
		t.Fatalf("successful retry should replace the placeholder: %#v", result[0])
	}
}

// -----------------------------------------------------------------------------
// Synchronous cache accessors
// -----------------------------------------------------------------------------

func TestIsCachedAndCachedQuote(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, true)

	if engine.IsCached("AAPL") {
		t.Fatalf("nothing fetched yet, IsCached must be false")
	}
	if q := engine.CachedQuote("AAPL"); q != nil {
		t.Fatalf("expected nil cached quote, got %#v", q)
	}

	engine.GetQuotes(context.Background(), []string{"AAPL"}, false)

	if !engine.IsCached("aapl") {
		t.Fatalf("IsCached should normalize case")
	}
	q := engine.CachedQuote("aapl")
	if q == nil || q.Symbol != "AAPL" {
		t.Fatalf("unexpected cached quote: %#v", q)
	}
	if len(provider.calls) != 1 {
		t.Fatalf("CachedQuote must never trigger a fetch, got %d calls", len(provider.calls))
	}
}

// -----------------------------------------------------------------------------
// Static info
// -----------------------------------------------------------------------------

func TestInfoCachesFailures(t *testing.T) {
	provider := &fakeProvider{invalid: map[string]bool{"NOPE": true}}
	engine := newTestEngine(t, provider, true)

	first := engine.Info(context.Background(), "NOPE")
	second := engine.Info(context.Background(), "NOPE")

	if first.State != models.InfoFailed || second.State != models.InfoFailed {
		t.Fatalf("expected failed lookups, got %v then %v", first.State, second.State)
	}
	if len(provider.calls) != 1 {
		t.Fatalf("failed lookup should be cached for the run, got %d calls", len(provider.calls))
	}
}

func TestInfoSuccessCached(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, true)

	result := engine.Info(context.Background(), "aapl")
	if result.State != models.InfoKnown || result.Info.Exchange != "NMS" {
		t.Fatalf("unexpected info result: %#v", result)
	}

	engine.Info(context.Background(), "AAPL")
	if len(provider.calls) != 1 {
		t.Fatalf("info hit should not re-fetch, got %d calls", len(provider.calls))
	}
}

// -----------------------------------------------------------------------------
// News and history
// -----------------------------------------------------------------------------

func TestNewsCachedForWindow(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, true)

	first, err := engine.News(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 article, got %d", len(first))
	}

	callsAfterFirst := len(provider.calls)
	if _, err := engine.News(context.Background(), "AAPL"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(provider.calls) != callsAfterFirst {
		t.Fatalf("cached news should not re-fetch")
	}
}

func TestNewsInvalidSymbol(t *testing.T) {
	provider := &fakeProvider{invalid: map[string]bool{"NOPE": true}}
	engine := newTestEngine(t, provider, true)

	if _, err := engine.News(context.Background(), "NOPE"); err == nil {
		t.Fatalf("expected error for invalid symbol")
	}
}

func TestHistoryInvalidSymbolShortCircuits(t *testing.T) {
	provider := &fakeProvider{invalid: map[string]bool{"NOPE": true}}
	engine := newTestEngine(t, provider, true)

	if _, err := engine.History(context.Background(), "NOPE", "1mo", "1d"); err == nil {
		t.Fatalf("expected error for invalid symbol")
	}

	candles, err := engine.History(context.Background(), "AAPL", "1mo", "1d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(candles))
	}
}

// -----------------------------------------------------------------------------
// Async dispatch
// -----------------------------------------------------------------------------

func TestFetchAsyncDeliversOrderedResult(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, true)

	done := make(chan *models.MQuoteUpdate, 1)
	engine.FetchAsync(context.Background(), []string{"msft", "AAPL"}, false, "watchlist", func(u *models.MQuoteUpdate) {
		done <- u
	})

	select {
	case update := <-done:
		if update.Tag != "watchlist" {
			t.Fatalf("unexpected tag %q", update.Tag)
		}
		if len(update.Quotes) != 2 || update.Quotes[0].Symbol != "MSFT" || update.Quotes[1].Symbol != "AAPL" {
			t.Fatalf("unexpected quotes: %#v", update.Quotes)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("async fetch did not complete")
	}

	engine.Wait()
}

// -----------------------------------------------------------------------------
// Portfolio wrapper
// -----------------------------------------------------------------------------

func TestPortfolioQuotes(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, true)

	name, symbols, data := engine.PortfolioQuotes(context.Background(), "growth", []string{"aapl", "aapl", "msft"}, false)

	if name != "growth" {
		t.Fatalf("unexpected name %q", name)
	}
	if len(symbols) != 2 || symbols[0] != "AAPL" || symbols[1] != "MSFT" {
		t.Fatalf("unexpected symbols: %v", symbols)
	}
	if len(data) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(data))
	}
}
