package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arko-chat/geobridge/internal/value"
)

const maxBodyBytes = 1 << 20

type dataBody struct {
	Data value.Value `json:"data"`
}

// HandleCall runs POST /api/{command}. The body, if any, is the args
// object. The response waits for settlement; if the request ends first
// the call keeps running and the client gets 504.
func (h *Handler) HandleCall(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")

	args := value.Null()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusRequestEntityTooLarge, "body too large")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !args.IsNull() && args.Kind() != value.ObjectKind {
			h.writeError(w, http.StatusBadRequest, "args must be an object")
			return
		}
	}

	ctx := r.Context()
	if h.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.callTimeout)
		defer cancel()
	}

	c := h.disp.Dispatch(r.Context(), command, args)
	o, err := c.Wait(ctx)
	if err != nil {
		h.logger.Warn("call still pending at end of request",
			"call", c.Name,
			"id", c.ID,
			"err", err,
		)
		h.writeError(w, http.StatusGatewayTimeout, "call did not settle before the request ended")
		return
	}

	if o.Rejected {
		h.writeError(w, http.StatusUnprocessableEntity, o.Reason)
		return
	}
	h.writeJSON(w, http.StatusOK, dataBody{Data: o.Payload})
}

func (h *Handler) HandleCommands(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"commands": h.disp.Commands()})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": h.hub.Count(),
	})
}
