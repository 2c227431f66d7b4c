// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Message is the envelope of every event pushed to clients.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sentAt"`
}

// Client is one websocket connection. Writes are serialized per connection.
type Client struct {
	Email string
	conn  *websocket.Conn
	mu    sync.Mutex
}

func (c *Client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages every websocket client, keyed by user email. A user may hold
// several connections (one per browser tab).
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

// Register adds a connection for email and returns its handle.
func (h *Hub) Register(email string, conn *websocket.Conn) *Client {
	c := &Client{Email: email, conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[email] == nil {
		h.clients[email] = make(map[*Client]struct{})
	}
	h.clients[email][c] = struct{}{}
	log.Printf("WebSocket client registered: %s", email)
	return c
}

// Unregister removes one connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.Email]
	if !ok {
		return
	}
	if _, ok := conns[c]; ok {
		delete(conns, c)
		log.Printf("WebSocket client unregistered: %s", c.Email)
	}
	if len(conns) == 0 {
		delete(h.clients, c.Email)
	}
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.clients {
		n += len(conns)
	}
	return n
}

func (h *Hub) snapshot(email string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*Client
	for e, conns := range h.clients {
		if email != "" && e != email {
			continue
		}
		for c := range conns {
			out = append(out, c)
		}
	}
	return out
}

// Send delivers a message to every connection of one user. An offline user is not an error.
func (h *Hub) Send(email string, message []byte) error {
	targets := h.snapshot(email)
	if len(targets) == 0 {
		log.Printf("WebSocket client not found, could not send message: %s", email)
		return nil
	}
	var firstErr error
	for _, c := range targets {
		if err := c.write(message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Publish broadcasts an event to every connected client. Failed writes are
// logged; the reader loop of that connection takes care of unregistering it.
func (h *Hub) Publish(event string, payload interface{}) {
	data, err := json.Marshal(Message{Event: event, Payload: payload, SentAt: time.Now()})
	if err != nil {
		log.Printf("WebSocket event=%s marshal error: %v", event, err)
		return
	}
	for _, c := range h.snapshot("") {
		if err := c.write(data); err != nil {
			log.Printf("WebSocket event=%s to=%s error: %v", event, c.Email, err)
		}
	}
}
