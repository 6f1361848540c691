package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"stocksdash/src/interfaces"
	"stocksdash/src/logger"
	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------
// YahooProvider implements IQuoteProvider against the public Yahoo Finance
// quote, chart and search endpoints.
// -----------------------------------------------------------------------------

type YahooProvider struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooProvider(cfg *models.MConfig, netMgr interfaces.INetworkManager) *YahooProvider {
	return &YahooProvider{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger("YahooProvider"),
	}
}

// -----------------------------------------------------------------------------

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string   `json:"symbol"`
			Currency                   *string  `json:"currency"` // nil means the symbol did not resolve
			Exchange                   string   `json:"exchange"`
			ShortName                  string   `json:"shortName"`
			LongName                   string   `json:"longName"`
			RegularMarketPrice         *float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
			RegularMarketDayLow        *float64 `json:"regularMarketDayLow"`
			RegularMarketDayHigh       *float64 `json:"regularMarketDayHigh"`
			FiftyTwoWeekLow            *float64 `json:"fiftyTwoWeekLow"`
			FiftyTwoWeekHigh           *float64 `json:"fiftyTwoWeekHigh"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// -----------------------------------------------------------------------------

// FetchBatch retrieves quotes for all symbols in a single remote call.
// Symbols the remote does not recognize come back as Invalid Ticker
// placeholders with a failed info state; only transport-level problems
// surface as an error.
func (p *YahooProvider) FetchBatch(ctx context.Context, symbols []string) ([]models.MFetchResult, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	params := map[string]string{
		"symbols": strings.Join(symbols, ","),
	}

	respBytes, err := p.Network.Get(ctx, p.Config.Provider.QuoteURL, params)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}

	var resp yahooQuoteResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote api error: %s - %s",
			resp.QuoteResponse.Error.Code, resp.QuoteResponse.Error.Description)
	}

	// Index results by symbol; the response order is not guaranteed and
	// unresolvable symbols are simply absent.
	bySymbol := make(map[string]int, len(resp.QuoteResponse.Result))
	for i, r := range resp.QuoteResponse.Result {
		bySymbol[strings.ToUpper(r.Symbol)] = i
	}

	results := make([]models.MFetchResult, 0, len(symbols))
	for _, symbol := range symbols {
		idx, found := bySymbol[symbol]
		if !found || resp.QuoteResponse.Result[idx].Currency == nil {
			// No currency field means the ticker does not resolve.
			results = append(results, models.MFetchResult{
				Symbol: symbol,
				Quote:  models.PlaceholderQuote(symbol, models.DescInvalidTicker),
				Info:   models.MInfoResult{State: models.InfoFailed},
			})
			continue
		}

		r := resp.QuoteResponse.Result[idx]

		description := r.LongName
		if description == "" {
			description = r.ShortName
		}
		if description == "" {
			description = symbol
		}

		results = append(results, models.MFetchResult{
			Symbol: symbol,
			Quote: models.MQuote{
				Symbol:           symbol,
				Description:      description,
				Price:            r.RegularMarketPrice,
				PreviousClose:    r.RegularMarketPreviousClose,
				DayLow:           r.RegularMarketDayLow,
				DayHigh:          r.RegularMarketDayHigh,
				FiftyTwoWeekLow:  r.FiftyTwoWeekLow,
				FiftyTwoWeekHigh: r.FiftyTwoWeekHigh,
			},
			Info: models.MInfoResult{
				State: models.InfoKnown,
				Info: models.MStaticInfo{
					Exchange:  r.Exchange,
					ShortName: r.ShortName,
					LongName:  r.LongName,
				},
			},
		})
	}

	return results, nil
}

// -----------------------------------------------------------------------------

// FetchInfo retrieves static metadata for one symbol via the same quote
// endpoint.
func (p *YahooProvider) FetchInfo(ctx context.Context, symbol string) (models.MInfoResult, error) {
	results, err := p.FetchBatch(ctx, []string{symbol})
	if err != nil {
		return models.MInfoResult{}, err
	}
	if len(results) == 0 {
		return models.MInfoResult{State: models.InfoFailed}, nil
	}
	return results[0].Info, nil
}

// -----------------------------------------------------------------------------

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"`   // Use pointers to handle null
					Low    []*float64 `json:"low"`    // Use pointers to handle null
					Open   []*float64 `json:"open"`   // Use pointers to handle null
					Close  []*float64 `json:"close"`  // Use pointers to handle null
					Volume []*float64 `json:"volume"` // Use pointers to handle null
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

// FetchHistory retrieves OHLCV bars for a symbol over a range at an
// interval. Bars with missing values are dropped.
func (p *YahooProvider) FetchHistory(ctx context.Context, symbol, rng, interval string) ([]models.MCandle, error) {
	params := map[string]string{
		"range":          rng,
		"interval":       interval,
		"includePrePost": "false",
	}

	url := fmt.Sprintf("%s/%s", p.Config.Provider.ChartURL, symbol)
	respBytes, err := p.Network.Get(ctx, url, params)
	if err != nil {
		return nil, fmt.Errorf("chart request failed for %s: %w", symbol, err)
	}

	var resp yahooChartResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}

	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no result in response for %s", symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data in response for %s", symbol)
	}

	quote := result.Indicators.Quote[0]

	if len(result.Timestamp) != len(quote.Close) ||
		len(result.Timestamp) != len(quote.Open) ||
		len(result.Timestamp) != len(quote.High) ||
		len(result.Timestamp) != len(quote.Low) ||
		len(result.Timestamp) != len(quote.Volume) {
		return nil, fmt.Errorf("data alignment error for %s", symbol)
	}

	var candles []models.MCandle
	for i := range result.Timestamp {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}

		candles = append(candles, models.MCandle{
			Symbol:    symbol,
			Timestamp: result.Timestamp[i],
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
			Volume:    *quote.Volume[i],
		})
	}

	return candles, nil
}

// -----------------------------------------------------------------------------

type yahooNewsResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
		Summary             string `json:"summary"`
	} `json:"news"`
}

// -----------------------------------------------------------------------------

// FetchNews retrieves recent news articles for a symbol.
func (p *YahooProvider) FetchNews(ctx context.Context, symbol string) ([]models.MNewsArticle, error) {
	params := map[string]string{
		"q":           symbol,
		"newsCount":   "20",
		"quotesCount": "0",
	}

	respBytes, err := p.Network.Get(ctx, p.Config.Provider.NewsURL, params)
	if err != nil {
		return nil, fmt.Errorf("news request failed for %s: %w", symbol, err)
	}

	var resp yahooNewsResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	articles := make([]models.MNewsArticle, 0, len(resp.News))
	for _, item := range resp.News {
		publishTime := ""
		if item.ProviderPublishTime > 0 {
			publishTime = time.Unix(item.ProviderPublishTime, 0).UTC().Format("2006-01-02 15:04 MST")
		}

		articles = append(articles, models.MNewsArticle{
			Title:       item.Title,
			Summary:     item.Summary,
			Publisher:   item.Publisher,
			Link:        item.Link,
			PublishTime: publishTime,
		})
	}

	return articles, nil
}
