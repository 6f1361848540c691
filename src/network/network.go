package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"stocksdash/src/helpers"
	"stocksdash/src/logger"
	"stocksdash/src/models"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// -----------------------------------------------------------------------------

// Manager performs HTTP GETs with a request-rate ceiling, bounded retries
// and exponential backoff. The limiter is shared across all callers so
// concurrent fetch batches cannot stampede the remote API.
type Manager struct {
	Config  *models.MConfig
	Client  *http.Client
	Limiter *rate.Limiter
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewManager(cfg *models.MConfig, log *logger.Logger) *Manager {
	return &Manager{
		Config: cfg,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
		Limiter: rate.NewLimiter(rate.Limit(cfg.Network.RequestsPerSecond), 1),
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (nm *Manager) userAgent() string {
	if nm.Config.Network.UserAgent != "" {
		return nm.Config.Network.UserAgent
	}
	return defaultUserAgent
}

// -----------------------------------------------------------------------------

// Get performs a GET request with rate limiting and retries.
func (nm *Manager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	finalUrl := reqUrl.String()

	maxRetries := nm.Config.Network.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(i*i) * time.Second): // Quadratic backoff
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := nm.Limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalUrl, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", nm.userAgent())

		resp, err := nm.Client.Do(req)
		if err != nil {
			lastErr = err
			nm.Logger.Info("Request failed (attempt %d/%d): %v", i+1, maxRetries+1, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
			lastErr = fmt.Errorf("blocked (status %d)", resp.StatusCode)
			nm.Logger.Info("Request blocked (%d), backing off", resp.StatusCode)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("bad status: %d", resp.StatusCode)
			nm.Logger.Info("Bad status %d", resp.StatusCode)
			continue
		}

		if readErr != nil {
			lastErr = readErr
			continue
		}

		return body, nil
	}

	return nil, helpers.NewNetworkError("max retries exceeded", lastErr)
}
