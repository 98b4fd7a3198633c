package wshub

import (
	"context"
	"sync"
	"time"
	"typerace/internal/metrics"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"
)

const writeTimeout = 10 * time.Second

// Client represents a single WebSocket connection in the hub. It satisfies
// broadcast.Subscriber so rooms can queue frames on it directly.
type Client struct {
	ID   string
	Conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClient(id string, conn *websocket.Conn, buffer int) *Client {
	if buffer <= 0 {
		buffer = 64
	}
	return &Client{
		ID:   id,
		Conn: conn,
		send: make(chan []byte, buffer),
	}
}

func (c *Client) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Deliver queues data for the write pump. Non-blocking: returns false if the
// client is closed or its buffer is full.
func (c *Client) Deliver(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close marks the client dead and stops its write pump. Safe to call twice.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WritePump reads from the send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				log.Debug().Err(err).Str("conn", c.ID).Msg("write failed")
				return
			}
		}
	}
}

// Hub tracks every live WebSocket connection in the process.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.clients[c.ID]; !exists {
		metrics.ActiveConnections.Inc()
	}
	h.clients[c.ID] = c
}

// Unregister removes a client and closes it.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		metrics.ActiveConnections.Dec()
	}
	h.mu.Unlock()

	if ok {
		c.Close()
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll closes every connection with StatusGoingAway and empties the hub.
func (h *Hub) CloseAll(reason string) {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range clients {
		metrics.ActiveConnections.Dec()
		c.Close()
		if c.Conn == nil {
			continue
		}
		wg.Add(1)
		go func(conn *websocket.Conn) {
			defer wg.Done()
			conn.Close(websocket.StatusGoingAway, reason)
		}(c.Conn)
	}
	wg.Wait()
	log.Info().Int("connections", len(clients)).Msg("closed all connections")
}
