package market

import (
	"testing"
	"time"

	"stocksdash/src/logger"
	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------

func newTestOracle() *Oracle {
	return NewOracle(logger.NewLogger("market-test"))
}

// -----------------------------------------------------------------------------

func TestCryptoAlwaysOpen(t *testing.T) {
	o := newTestOracle()

	for _, code := range []string{"GDAX", "CCC", "CCY", "gdax"} {
		st := o.Status(code)
		if !st.IsOpen || st.Status != models.SessionOpen {
			t.Fatalf("crypto venue %s should always be open, got %+v", code, st)
		}
	}
}

func TestUnknownExchangeAssumedOpen(t *testing.T) {
	o := newTestOracle()

	st := o.Status("ZZZZ")
	if !st.IsOpen {
		t.Fatalf("unmapped exchange should be assumed open, got %+v", st)
	}
	if st.Status != models.SessionUnknown {
		t.Fatalf("unmapped exchange status = %q, want %q", st.Status, models.SessionUnknown)
	}
}

func TestEmptyExchangeAssumedOpen(t *testing.T) {
	o := newTestOracle()

	st := o.Status("  ")
	if !st.IsOpen || st.Status != models.SessionUnknown {
		t.Fatalf("blank exchange should be assumed open/unknown, got %+v", st)
	}
}

// -----------------------------------------------------------------------------

func TestStatusTracksCalendar(t *testing.T) {
	o := newTestOracle()

	// Wednesday 2026-01-07 14:00 New York: regular cash session.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load NY timezone: %v", err)
	}
	o.now = func() time.Time { return time.Date(2026, 1, 7, 14, 0, 0, 0, ny) }

	st := o.Status("NYQ")
	if !st.IsOpen || st.Status != models.SessionOpen {
		t.Fatalf("NYSE should be open Wed 14:00 NY, got %+v", st)
	}

	// Sunday 2026-01-04 14:00 New York: closed.
	o.now = func() time.Time { return time.Date(2026, 1, 4, 14, 0, 0, 0, ny) }

	st = o.Status("NYQ")
	if st.IsOpen || st.Status != models.SessionClosed {
		t.Fatalf("NYSE should be closed on Sunday, got %+v", st)
	}
}

func TestCalendarMemoized(t *testing.T) {
	o := newTestOracle()

	first := o.calendarFor("xnys")
	second := o.calendarFor("xnys")
	if first != second {
		t.Fatalf("calendar for the same MIC should be memoized")
	}
}

// -----------------------------------------------------------------------------

func TestFallbackCalendarSchedule(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load NY timezone: %v", err)
	}
	tc := &TradingCalendar{Fallback: true, Timezone: ny}

	cases := []struct {
		at   time.Time
		open bool
	}{
		{time.Date(2026, 1, 7, 9, 29, 0, 0, ny), false},  // pre-open
		{time.Date(2026, 1, 7, 9, 30, 0, 0, ny), true},   // opening bell
		{time.Date(2026, 1, 7, 15, 59, 0, 0, ny), true},  // last minute
		{time.Date(2026, 1, 7, 16, 0, 0, 0, ny), false},  // close
		{time.Date(2026, 1, 10, 12, 0, 0, 0, ny), false}, // Saturday
		{time.Date(2026, 1, 11, 12, 0, 0, 0, ny), false}, // Sunday
	}

	for _, tcase := range cases {
		if got := tc.IsOpenAt(tcase.at); got != tcase.open {
			t.Fatalf("IsOpenAt(%v) = %v, want %v", tcase.at, got, tcase.open)
		}
	}
}

func TestFallbackTradingDay(t *testing.T) {
	tc := &TradingCalendar{Fallback: true, Timezone: time.UTC}

	if !tc.IsTradingDay(time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("Wednesday should be a trading day")
	}
	if tc.IsTradingDay(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("Saturday should not be a trading day")
	}
}
