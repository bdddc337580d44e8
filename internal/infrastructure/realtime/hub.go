package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event types pushed to or relayed between clients.
const (
	EventReceiveMessage = "receive_message"
	EventTyping         = "typing"
	EventStopTyping     = "stop_typing"
)

// Event is the wire frame for every websocket message.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans events out to every connected session of a user. A user may hold several
// sessions (tabs, devices); each one is a Client.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns registration until ctx is cancelled, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			sessions, ok := h.clients[client.userID]
			if !ok {
				sessions = make(map[*Client]struct{})
				h.clients[client.userID] = sessions
			}
			sessions[client] = struct{}{}
			h.mu.Unlock()
			log.Debug().Str("user_id", client.userID).Msg("[WS] Client registered")

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for userID, sessions := range h.clients {
				for c := range sessions {
					close(c.send)
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := sessions[client]; !ok {
		return
	}
	close(client.send)
	delete(sessions, client)
	if len(sessions) == 0 {
		delete(h.clients, client.userID)
	}
	log.Debug().Str("user_id", client.userID).Msg("[WS] Client unregistered")
}

// Notify pushes an event to all sessions of userID without blocking. Sessions whose
// buffer is full are dropped. It reports whether at least one session got the event.
func (h *Hub) Notify(userID uuid.UUID, eventType string, payload interface{}) bool {
	return h.send(userID.String(), Event{Type: eventType, Data: payload})
}

func (h *Hub) send(userID string, event Event) bool {
	frame, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("[WS] Failed to encode event")
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := false
	for c := range h.clients[userID] {
		select {
		case c.send <- frame:
			delivered = true
		default:
			go h.leave(c)
			log.Warn().Str("user_id", userID).Msg("[WS] Send buffer full, dropping session")
		}
	}
	return delivered
}

func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID.String()]) > 0
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, sessions := range h.clients {
		n += len(sessions)
	}
	return n
}
