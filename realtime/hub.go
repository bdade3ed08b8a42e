// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/danielhkuo/sitetime/metrics"
	"github.com/danielhkuo/sitetime/models"
)

// Event names sent to clients.
const (
	EventMessage             = "message"
	EventUpdateWorkers       = "update_workers"
	EventUpdateProjects      = "update_projects"
	EventNewRecord           = "new_record"
	EventUpdateRecords       = "update_records"
	EventUpdateProjectPhotos = "update_project_photos"
)

const greetingText = "Connected to server."

// Message is the frame written to every client.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub tracks connected clients and fans messages out to them. Delivery is
// best effort: a client whose buffer is full is disconnected and a full
// broadcast queue drops the message.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every client. A stopped hub stays stopped; calling Run again
// returns immediately.
func (h *Hub) Run(ctx context.Context) error {
	select {
	case <-h.done:
		return ctx.Err()
	default:
	}
	defer h.stopOnce.Do(func() { close(h.done) })
	for {
		select {
		case <-ctx.Done():
			n := h.closeAll()
			slog.Info("realtime hub stopped", "component", "hub", "clients_closed", n)
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WSConnectionsActive.Set(float64(total))
			c.trySend(Message{Type: EventMessage, Data: models.GreetingEvent{Data: greetingText}})
			slog.Info("realtime client connected", "client_id", c.id, "user", c.user, "total_clients", total)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WSConnectionsActive.Set(float64(total))
			slog.Info("realtime client disconnected", "client_id", c.id, "total_clients", total)

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// Broadcast queues msg for every connected client without blocking.
func (h *Hub) Broadcast(event string, data any) {
	select {
	case h.broadcast <- Message{Type: event, Data: data}:
	default:
		metrics.WSMessagesDropped.Inc()
		slog.Warn("broadcast queue full, dropping message", "event", event)
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds c, returning false if the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) fanOut(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	metrics.RecordBroadcast(msg.Type)
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			metrics.WSMessagesDropped.Inc()
			slog.Warn("realtime client too slow, disconnecting", "client_id", c.id)
			close(c.send)
			delete(h.clients, c)
		}
	}
	metrics.WSConnectionsActive.Set(float64(len(h.clients)))
}

func (h *Hub) closeAll() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.clients)
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.WSConnectionsActive.Set(0)
	return n
}
