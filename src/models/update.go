package models

// -----------------------------------------------------------------------------
// Push payloads (websocket hub)
// -----------------------------------------------------------------------------

// MQuoteUpdate is what the hub sends to connected clients when a fetch
// completes. Type is "INITIAL" on connect and "UPDATE" afterwards. Tag
// identifies the logical request stream (e.g. the watchlist name) so a
// client can ignore updates for views it is no longer showing.
type MQuoteUpdate struct {
	Type      string   `json:"type"`
	Tag       string   `json:"tag"`
	Quotes    []MQuote `json:"quotes"`
	Timestamp int64    `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// MSubscribeCommand for client messages
type MSubscribeCommand struct {
	Command string   `json:"command"`
	Symbols []string `json:"symbols"`
	Tag     string   `json:"tag"`
}
