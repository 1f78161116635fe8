package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/arko-chat/geobridge/internal/call"
	"github.com/arko-chat/geobridge/internal/value"
	"github.com/arko-chat/geobridge/internal/ws"
)

// Dispatcher is the command surface the transports drive.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, args value.Value) *call.Call
	Run(ctx context.Context, c *call.Call) *call.Call
	Commands() []string
}

type Handler struct {
	disp        Dispatcher
	hub         *ws.Hub
	logger      *slog.Logger
	callTimeout time.Duration
}

// New builds the handlers. callTimeout bounds how long an HTTP call
// waits for settlement; zero waits until the client goes away.
func New(disp Dispatcher, hub *ws.Hub, logger *slog.Logger, callTimeout time.Duration) *Handler {
	return &Handler{disp: disp, hub: hub, logger: logger, callTimeout: callTimeout}
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("handler write", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, reason string) {
	h.writeJSON(w, status, errorBody{Error: reason})
}
