// Package progress maps request ids to live websocket connections and pushes
// best-effort status events to them.
package progress

import (
	"context"
	"errors"
	"sync"

	"course_gen_backend/models"
	"course_gen_backend/pkg/logging"
	"course_gen_backend/platform/metrics"
)

var ErrClientClosed = errors.New("client closed")

// Conn is the write side of a websocket connection.
type Conn interface {
	WriteJSON(v interface{}) error
}

// Client serializes writes to one connection. Handlers and jobs may write to
// the same client from different goroutines.
type Client struct {
	conn   Conn
	mu     sync.Mutex
	closed bool
}

func NewClient(conn Conn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	return c.conn.WriteJSON(v)
}

func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Client) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Hub is the progress channel registry. Each request id maps to at most one
// client; the latest registration wins.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) Register(requestID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.clients[requestID]; ok && prev != c {
		logging.Logger.Debug("replacing progress client", "requestId", requestID)
	}
	h.clients[requestID] = c
}

// Unregister removes every id currently mapped to c.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, registered := range h.clients {
		if registered == c {
			delete(h.clients, id)
			logging.Logger.Debug("progress client unregistered", "requestId", id)
		}
	}
}

func (h *Hub) Lookup(requestID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[requestID]
	return c, ok
}

// Send delivers event to the client registered for requestID. Absent or
// closed clients and write failures drop the event silently.
func (h *Hub) Send(_ context.Context, requestID string, event models.ProgressEvent) {
	c, ok := h.Lookup(requestID)
	if !ok || !c.Open() {
		metrics.ProgressEvents.WithLabelValues("false").Inc()
		return
	}
	if err := c.Send(event); err != nil {
		metrics.ProgressEvents.WithLabelValues("false").Inc()
		logging.Logger.Warn("dropping progress event", "requestId", requestID, "type", event.Type, "error", err)
		return
	}
	metrics.ProgressEvents.WithLabelValues("true").Inc()
}
