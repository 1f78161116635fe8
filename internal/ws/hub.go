package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/arko-chat/geobridge/internal/relay"
	"github.com/arko-chat/geobridge/internal/value"
)

var _ relay.Notifier = (*Hub)(nil)

// Hub tracks connected clients and fans relay notifications out to all
// of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	h.logger.Debug("ws register",
		"client", c.ID,
		"clients", len(h.clients),
	)
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	h.logger.Debug("ws unregister", "client", c.ID)
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Broadcast(data []byte) {
	if data == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.clients {
		if c.Push(data) {
			sent++
			continue
		}
		h.logger.Warn("ws dropped message", "client", c.ID)
	}

	h.logger.Debug("ws broadcast", "recipients", sent)
}

// Notify implements relay.Notifier.
func (h *Hub) Notify(channel string, data value.Value) {
	frame, err := json.Marshal(EventFrame{Type: FrameEvent, Channel: channel, Data: data})
	if err != nil {
		h.logger.Error("ws encode event", "channel", channel, "err", err)
		return
	}
	h.Broadcast(frame)
}
