package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub is the main Hub loop
func (s *APIServer) runHub() {
	for {
		select {
		case <-s.done:
			return

		case client := <-s.register:
			s.stateMutex.Lock()
			s.clients[client] = struct{}{}
			s.stateMutex.Unlock()

			// Replay last update on connect so a fresh client renders
			// immediately instead of waiting for the next fetch.
			s.stateMutex.RLock()
			if s.latestUpdate != nil {
				replay := *s.latestUpdate
				replay.Type = "INITIAL"
				client.send <- &replay
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			s.stateMutex.Lock()
			if _, exists := s.clients[client]; exists {
				delete(s.clients, client)
				close(client.send)
			}
			s.stateMutex.Unlock()

		case update := <-s.broadcast:
			s.stateMutex.Lock()
			s.latestUpdate = update

			for client := range s.clients {
				select {
				case client.send <- update:
					// Message sent successfully
				default:
					// Client too slow, disconnect to keep the Hub moving
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.stateMutex.Unlock()
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues a completed quote update for all connected clients.
// After Stop the update is dropped: background fetches run to completion
// and their results are already in the cache, so losing the delivery is
// the tolerated outcome, not a fault.
func (s *APIServer) Broadcast(update *models.MQuoteUpdate) {
	if update == nil {
		return
	}
	select {
	case s.broadcast <- update:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage reacts to subscribe commands: the requested symbols
// are fetched in the background and the result lands on every client via
// the Hub once the batch completes.
func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" || len(cmd.Symbols) == 0 {
		return
	}

	tag := cmd.Tag
	if tag == "" {
		tag = "default"
	}

	s.Engine.FetchAsync(context.Background(), cmd.Symbols, false, tag, s.Broadcast)
}
