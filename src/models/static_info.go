package models

// -----------------------------------------------------------------------------
// Static per-symbol metadata
// -----------------------------------------------------------------------------

// MStaticInfo holds slow-changing metadata for a symbol: the venue it trades
// on and its display names. It is treated as immutable for the process
// lifetime once learned.
type MStaticInfo struct {
	Exchange  string `json:"exchange"`
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name"`
}

// -----------------------------------------------------------------------------

// InfoState distinguishes "never looked up" from "looked up and failed" from
// "looked up and succeeded" for a symbol's static info.
type InfoState int

const (
	InfoUnknown InfoState = iota // no lookup attempted yet
	InfoFailed                   // lookup attempted, symbol did not resolve
	InfoKnown                    // lookup succeeded
)

// MInfoResult is the tri-state outcome of a static-info lookup. Info is only
// meaningful when State == InfoKnown.
type MInfoResult struct {
	State InfoState
	Info  MStaticInfo
}
