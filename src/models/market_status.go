package models

// -----------------------------------------------------------------------------
// Market status
// -----------------------------------------------------------------------------

// Session states reported by the market-status oracle.
const (
	SessionOpen    = "open"
	SessionClosed  = "closed"
	SessionUnknown = "unknown"
)

// MMarketStatus is the oracle's answer for one venue. When the calendar for
// a venue cannot be resolved the oracle reports SessionUnknown with
// IsOpen=true so that callers err on the side of fetching.
type MMarketStatus struct {
	IsOpen   bool   `json:"is_open"`
	Status   string `json:"status"`
	Calendar string `json:"calendar"`
}
