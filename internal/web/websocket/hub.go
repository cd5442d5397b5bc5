// Package websocket streams flushed commits to connected orchestration
// clients and answers token inspection requests over the same connection.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/splashsync/connector/internal/commit"
)

// Errors returned by Publish. Both leave the commits pending.
var (
	ErrNoClients = errors.New("no feed client connected")
	ErrHubClosed = errors.New("feed hub stopped")
)

// Hub maintains the set of connected clients
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	done     chan struct{}
	doneOnce sync.Once

	logger *zap.Logger
}

// NewHub creates a hub; call Run to start it
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register, unregister and broadcast requests until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer h.doneOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("feed client registered", zap.String("client", c.ID), zap.Int("total", h.ClientCount()))

		case c := <-h.unregister:
			h.remove(c)
			h.logger.Debug("feed client unregistered", zap.String("client", c.ID), zap.Int("total", h.ClientCount()))

		case data := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				if !c.enqueue(data) {
					h.logger.Warn("feed client too slow, frame dropped", zap.String("client", c.ID))
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish implements commit.Sink by broadcasting events to every client.
// It fails with ErrNoClients when nobody is listening.
func (h *Hub) Publish(ctx context.Context, events []commit.Event) error {
	if h.stopped() {
		return ErrHubClosed
	}
	if h.ClientCount() == 0 {
		return ErrNoClients
	}

	data, err := newMessage(TypeCommits, events)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return fmt.Errorf("commit broadcast aborted: %w", ctx.Err())
	}
}

// join hands c to the hub; false means the hub has stopped
func (h *Hub) join(c *Client) bool {
	if h.stopped() {
		return false
	}
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave hands c back to the hub, or closes it directly once the hub has stopped
func (h *Hub) leave(c *Client) {
	if h.stopped() {
		c.close()
		return
	}
	select {
	case h.unregister <- c:
	case <-h.done:
		c.close()
	}
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}
