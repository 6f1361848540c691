package market

import (
	"strings"
	"sync"
	"time"

	"stocksdash/src/logger"
	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------
// Oracle answers "is this venue open right now". It memoizes resolved
// calendars per exchange code since calendar construction walks holiday
// tables. It never returns an error: any resolution failure degrades to
// "assume open" so callers lean toward fetching fresh data.
// -----------------------------------------------------------------------------

type Oracle struct {
	Logger    *logger.Logger
	calendars map[string]*TradingCalendar
	mu        sync.RWMutex
	// now is swappable for tests
	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewOracle(log *logger.Logger) *Oracle {
	return &Oracle{
		Logger:    log,
		calendars: make(map[string]*TradingCalendar),
		now:       time.Now,
	}
}

// -----------------------------------------------------------------------------

// Status reports the session state for an exchange code as reported by the
// quote provider (e.g. "NMS", "LSE", "GDAX").
func (o *Oracle) Status(exchange string) models.MMarketStatus {
	code := strings.ToUpper(strings.TrimSpace(exchange))
	if code == "" {
		return models.MMarketStatus{IsOpen: true, Status: models.SessionUnknown, Calendar: ""}
	}

	if cryptoExchanges[code] {
		return models.MMarketStatus{IsOpen: true, Status: models.SessionOpen, Calendar: code}
	}

	mic, ok := micByExchange[code]
	if !ok {
		o.Logger.Debug("No calendar mapping for exchange %s, assuming open", code)
		return models.MMarketStatus{IsOpen: true, Status: models.SessionUnknown, Calendar: code}
	}

	cal := o.calendarFor(mic)

	if cal.IsOpenAt(o.now().UTC()) {
		return models.MMarketStatus{IsOpen: true, Status: models.SessionOpen, Calendar: mic}
	}
	return models.MMarketStatus{IsOpen: false, Status: models.SessionClosed, Calendar: mic}
}

// -----------------------------------------------------------------------------

func (o *Oracle) calendarFor(mic string) *TradingCalendar {
	o.mu.RLock()
	cal, ok := o.calendars[mic]
	o.mu.RUnlock()
	if ok {
		return cal
	}

	cal = GetCalendar(mic)

	o.mu.Lock()
	o.calendars[mic] = cal
	o.mu.Unlock()
	return cal
}
