package interfaces

import "stocksdash/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defining the interface for delivering quote updates to
// external listeners (HTTP/websocket surface).
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// Broadcast pushes a completed quote update to connected listeners.
	Broadcast(update *models.MQuoteUpdate)

	// -----------------------------------------------------------------------------

	// Start the server
	Start() error

	// -----------------------------------------------------------------------------

	// Stop the server gracefully
	Stop() error
}
