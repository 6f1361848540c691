package freshness

import (
	"time"

	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------
// Freshness policy: how old may a cached quote be before it must be
// re-fetched. The answer depends on whether the symbol's market is open.
// -----------------------------------------------------------------------------

// StatusFunc resolves the session state for an exchange code. Injected so
// the policy stays a pure decision function in tests.
type StatusFunc func(exchange string) models.MMarketStatus

type Policy struct {
	OpenWindow   time.Duration
	ClosedWindow time.Duration
	Status       StatusFunc
}

// -----------------------------------------------------------------------------

func NewPolicy(cfg models.MCacheConfig, status StatusFunc) *Policy {
	return &Policy{
		OpenWindow:   time.Duration(cfg.OpenWindowSeconds) * time.Second,
		ClosedWindow: time.Duration(cfg.ClosedWindowSeconds) * time.Second,
		Status:       status,
	}
}

// -----------------------------------------------------------------------------

// Window picks the freshness window for a symbol given its static info. A
// symbol whose exchange we have never learned is treated as trading on an
// open market: the short window keeps it eligible for fetching, and the
// fetch is what teaches us the exchange.
func (p *Policy) Window(info models.MInfoResult) time.Duration {
	if info.State != models.InfoKnown || info.Info.Exchange == "" {
		return p.OpenWindow
	}

	if p.Status(info.Info.Exchange).IsOpen {
		return p.OpenWindow
	}
	return p.ClosedWindow
}

// -----------------------------------------------------------------------------

// IsFresh reports whether a quote cached at cachedAt is still servable at
// now without a new fetch.
func (p *Policy) IsFresh(info models.MInfoResult, cachedAt, now time.Time) bool {
	return now.Sub(cachedAt) < p.Window(info)
}
