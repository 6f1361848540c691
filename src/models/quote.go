package models

import "time"

// -----------------------------------------------------------------------------
// Quote data
// -----------------------------------------------------------------------------

// Sentinel descriptions surfaced to consumers. These are part of the
// external contract: a record carrying one of them is a placeholder, not a
// real quote.
const (
	DescInvalidTicker   = "Invalid Ticker"
	DescDataUnavailable = "Data Unavailable"
)

// MQuote is a point-in-time snapshot of a symbol's price data.
// Numeric fields are pointers: nil means the remote did not report a value,
// which is distinct from zero.
type MQuote struct {
	Symbol           string   `json:"symbol"`
	Description      string   `json:"description"`
	Price            *float64 `json:"price"`
	PreviousClose    *float64 `json:"previous_close"`
	DayLow           *float64 `json:"day_low"`
	DayHigh          *float64 `json:"day_high"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low"`
	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high"`
}

// -----------------------------------------------------------------------------

// IsPlaceholder reports whether the quote is one of the failure sentinels
// rather than real market data.
func (q MQuote) IsPlaceholder() bool {
	return q.Description == DescInvalidTicker || q.Description == DescDataUnavailable
}

// -----------------------------------------------------------------------------

// PlaceholderQuote builds a sentinel record for a symbol that could not be
// fetched. All numeric fields stay nil.
func PlaceholderQuote(symbol, description string) MQuote {
	return MQuote{Symbol: symbol, Description: description}
}

// -----------------------------------------------------------------------------

// MCacheEntry pairs a quote with the UTC time it was captured. At most one
// entry exists per symbol in the in-memory cache (last write wins).
type MCacheEntry struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Quote     MQuote    `json:"quote"`
}

// -----------------------------------------------------------------------------

// MFetchResult is one symbol's outcome within a batch fetch: the quote (real
// or placeholder) plus whatever static info the remote reported alongside it.
type MFetchResult struct {
	Symbol string
	Quote  MQuote
	Info   MInfoResult
}
