package websocket

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades HTTP requests into feed clients of a hub
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler creates the upgrade handler. A nil checkOrigin accepts any origin.
func NewHandler(hub *Hub, checkOrigin func(r *http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(uuid.New().String(), conn, h.hub)
	if !h.hub.join(c) {
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
