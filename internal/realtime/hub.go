// Package realtime pushes dashboard events to websocket clients.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"design-system-api/internal/datasource"
	"design-system-api/internal/logging"
)

// Client represents a single websocket client connection.
// The actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains active user connections and broadcasts events to them.
// It implements datasource.Notifier.
type Hub struct {
	mu              sync.RWMutex
	userIDToClients map[string]map[Client]struct{}
	logger          *slog.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		userIDToClients: make(map[string]map[Client]struct{}),
		logger:          logging.Component(logger, "realtime"),
	}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userIDToClients[userID]; !ok {
		h.userIDToClients[userID] = make(map[Client]struct{})
	}
	h.userIDToClients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.userIDToClients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userIDToClients, userID)
		}
	}
}

// Clients returns how many connections are registered.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.userIDToClients {
		n += len(clients)
	}
	return n
}

// Broadcast sends a message to all clients of a user.
// A failed send is left for the owning handler to clean up.
func (h *Hub) Broadcast(userID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.userIDToClients[userID] {
		if !c.Send(message) {
			h.logger.Debug("send failed", "user_id", userID)
		}
	}
}

// BroadcastAll sends a message to every connected client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID, clients := range h.userIDToClients {
		for c := range clients {
			if !c.Send(message) {
				h.logger.Debug("send failed", "user_id", userID)
			}
		}
	}
}

// Publish marshals evt and sends it to userID, or to everyone when userID
// is empty.
func (h *Hub) Publish(userID string, evt any) {
	bytes, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}
	if userID == "" {
		h.BroadcastAll(bytes)
		return
	}
	h.Broadcast(userID, bytes)
}

// DataSourceChanged tells every client that a domain switched source.
func (h *Hub) DataSourceChanged(e datasource.Event) {
	h.Publish("", map[string]any{
		"type":   "datasource_changed",
		"domain": e.Domain,
		"source": e.Source,
		"error":  e.Error,
	})
}
