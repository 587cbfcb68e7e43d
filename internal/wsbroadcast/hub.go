// Package wsbroadcast pushes pairing and standings updates to connected
// spectators over gorilla/websocket, adapted from the teacher's
// internal/websocket Hub/Client pair. The teacher ran one hub process-wide
// for a single domain.WebSocketMessage type; a Swiss event runs many
// tournaments per process, so here a Registry hands out one Hub per
// tournament ID and the message envelope is keyed by EventType instead of
// the teacher's domain-specific WebSocketEventType.
package wsbroadcast

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// EventType names one kind of update a spectator feed can carry.
type EventType string

const (
	EventPairingsPosted    EventType = "PAIRINGS_POSTED"
	EventResultReported    EventType = "RESULT_REPORTED"
	EventStandingsUpdated  EventType = "STANDINGS_UPDATED"
	EventPlayerDropped     EventType = "PLAYER_DROPPED"
	EventRoundNotReady     EventType = "ROUND_NOT_READY" // carries an engine.Error payload
)

// Message is the envelope every event is wrapped in before being marshaled
// to JSON and fanned out to a tournament's subscribers.
type Message struct {
	Type         EventType   `json:"type"`
	TournamentID uuid.UUID   `json:"tournament_id"`
	Payload      interface{} `json:"payload"`
}

// Client is a single spectator connection.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans Broadcast messages out to every registered Client for one
// tournament.
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

func newHub() *Hub {
	return &Hub{
		Broadcast:  make(chan Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Register adds client to the hub's audience.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Run drives the hub's select loop. Callers launch it in its own goroutine
// once per tournament and let it run for the process lifetime.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
		case msg := <-h.Broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("wsbroadcast: marshal event %s for tournament %s: %v", msg.Type, msg.TournamentID, err)
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- data:
				default:
					log.Printf("wsbroadcast: client send buffer full, dropping connection %p", client.Conn.RemoteAddr())
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// WritePump drains c.Send to the underlying connection until the hub closes
// the channel or a write fails.
func (c *Client) WritePump() {
	defer c.Conn.Close()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("wsbroadcast: write error: %v", err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump discards inbound frames but unregisters the client on close, the
// same fire-and-forget shape the teacher's hub uses for a broadcast-only
// feed.
func (c *Client) ReadPump(hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("wsbroadcast: unexpected close: %v", err)
			}
			return
		}
	}
}

// Registry owns one Hub per tournament, created lazily on first use.
type Registry struct {
	mu   sync.Mutex
	hubs map[uuid.UUID]*Hub
}

// NewRegistry returns an empty hub registry.
func NewRegistry() *Registry {
	return &Registry{hubs: make(map[uuid.UUID]*Hub)}
}

// HubFor returns the hub for tournamentID, starting its run loop the first
// time it is requested.
func (r *Registry) HubFor(tournamentID uuid.UUID) *Hub {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hubs[tournamentID]
	if !ok {
		h = newHub()
		r.hubs[tournamentID] = h
		go h.Run()
	}
	return h
}

// Publish is a convenience wrapper that builds and sends a Message on the
// right tournament's hub.
func (r *Registry) Publish(tournamentID uuid.UUID, eventType EventType, payload interface{}) {
	r.HubFor(tournamentID).Broadcast <- Message{Type: eventType, TournamentID: tournamentID, Payload: payload}
}
