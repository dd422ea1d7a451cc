package hub

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single subscriber to a session's event stream.
// It's essentially a channel the delivery handler listens to.
type Client chan []byte

// Hub manages subscribers per session and fans events out to them. It
// implements the coordinator's Notifier interface.
type Hub struct {
	sessions map[uint]map[Client]bool
	mu       sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a new client to a specific session.
func (h *Hub) Subscribe(sessionID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[sessionID]; !ok {
		h.sessions[sessionID] = make(map[Client]bool)
	}
	h.sessions[sessionID][client] = true
}

// Unsubscribe removes a client from a session.
func (h *Hub) Unsubscribe(sessionID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.sessions[sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the delivery handler to stop.
			if len(clients) == 0 {
				delete(h.sessions, sessionID)
			}
		}
	}
}

// Notify sends an event to all clients subscribed to a session. Called by the
// matchmaking coordinator after each committed transition.
func (h *Hub) Notify(sessionID uint, event string, payload interface{}) {
	h.Broadcast(sessionID, Event{Type: event, Payload: payload})
}

// Broadcast sends an event to all clients in a specific session.
func (h *Hub) Broadcast(sessionID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.sessions[sessionID]; ok {
		messageBytes, err := json.Marshal(event)
		if err != nil {
			logrus.WithError(err).WithField("session_id", sessionID).Warn("Failed to marshal event")
			return
		}

		for client := range clients {
			// Use a non-blocking send to prevent a slow client from blocking the hub.
			select {
			case client <- messageBytes:
			default:
				// Client channel is full, maybe they are disconnected or slow.
				// The unsubscribe logic will handle cleaning this up eventually.
			}
		}
	}
}
