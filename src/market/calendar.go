package market

import (
	"time"

	"github.com/scmhub/calendar"
)

// -----------------------------------------------------------------------------
// Exchange code mapping
// -----------------------------------------------------------------------------

// micByExchange maps the provider's exchange codes to MIC codes (ISO 10383)
// understood by scmhub/calendar.
var micByExchange = map[string]string{
	// US
	"NMS": "xnas", "NGM": "xnas", "NCM": "xnas", "NAS": "xnas",
	"NYQ": "xnys", "ASE": "xnys", "PCX": "xnys", "PNK": "xnys",
	// Europe
	"LSE": "xlon", "IOB": "xlon",
	"PAR": "xpar",
	"GER": "xfra", "FRA": "xfra", "BER": "xfra",
	"AMS": "xams",
	"BRU": "xbru",
	"MIL": "xmil",
	"MCE": "xmad",
	"STO": "xsto",
	"CPH": "xcse",
	"HEL": "xhel",
	"VIE": "xwbo",
	"EBS": "xswx",
	// Americas ex-US
	"TOR": "xtse",
	"VAN": "xtsx",
	// Asia-Pacific
	"JPX": "xtks", "TYO": "xtks",
	"HKG": "xhkg",
	"ASX": "xasx",
	"KSC": "xkrx", "KOE": "xkrx",
	"TAI": "xtai",
	"SHH": "xshg",
	"SHZ": "xshe",
}

// Crypto venues trade around the clock; there is no calendar to consult.
var cryptoExchanges = map[string]bool{
	"GDAX": true,
	"CCC":  true,
	"CCY":  true,
}

// -----------------------------------------------------------------------------

// TradingCalendar wraps one venue calendar with a Mon-Fri fallback for MICs
// the library does not know.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

func GetCalendar(mic string) *TradingCalendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		// Simple fallback: Mon-Fri 09:30-16:00 New York
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenAt checks if the market is open at a specific instant.
func (tc *TradingCalendar) IsOpenAt(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}

		hour := t.Hour()
		minute := t.Minute()

		// 9:30 - 16:00 NY Time
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}
