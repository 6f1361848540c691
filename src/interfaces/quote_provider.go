package interfaces

import (
	"context"

	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteProvider is the boundary to the remote market-data API.
// -----------------------------------------------------------------------------

type IQuoteProvider interface {

	// FetchBatch retrieves quotes for many symbols in one remote call.
	// A symbol the remote does not recognize yields a result whose Info
	// state is InfoFailed; it is not an error. The returned error covers
	// transport-level failures affecting the whole batch.
	FetchBatch(ctx context.Context, symbols []string) ([]models.MFetchResult, error)

	// -----------------------------------------------------------------------------

	// FetchInfo retrieves static metadata for one symbol.
	FetchInfo(ctx context.Context, symbol string) (models.MInfoResult, error)

	// -----------------------------------------------------------------------------

	// FetchHistory retrieves OHLCV bars for a symbol over a range
	// (e.g. "1mo") at an interval (e.g. "1d").
	FetchHistory(ctx context.Context, symbol, rng, interval string) ([]models.MCandle, error)

	// -----------------------------------------------------------------------------

	// FetchNews retrieves recent news articles for a symbol.
	FetchNews(ctx context.Context, symbol string) ([]models.MNewsArticle, error)
}
