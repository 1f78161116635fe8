package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/arko-chat/geobridge/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}

	client := ws.NewClient(h.hub, conn)
	defer client.Close()

	h.hub.Register(client)
	go client.WritePump()

	h.hub.Serve(r.Context(), client, h.disp)
}
