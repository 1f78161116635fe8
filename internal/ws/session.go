package ws

import (
	"context"
	"encoding/json"

	"github.com/arko-chat/geobridge/internal/call"
)

// Runner runs a call; the dispatcher satisfies it.
type Runner interface {
	Run(ctx context.Context, c *call.Call) *call.Call
}

// Serve turns request frames from c into calls and writes each
// settlement back as a response frame. It returns when the connection
// closes.
func (h *Hub) Serve(ctx context.Context, c *Client, runner Runner) {
	c.ReadPump(ctx, func(ctx context.Context, raw []byte) {
		req, err := ParseRequest(raw)
		if err != nil {
			h.logger.Debug("ws bad frame", "client", c.ID, "err", err)
			if resp, ok := RejectFrame(raw, err); ok {
				h.push(c, resp)
			}
			return
		}

		var cl *call.Call
		if req.ID != "" {
			cl = call.NewWithID(req.ID, req.Command, req.Args)
		} else {
			cl = call.New(req.Command, req.Args)
		}

		cl.Observe(call.SinkFunc(func(settled *call.Call, o call.Outcome) {
			h.push(c, NewResponse(settled.ID, o))
		}))
		runner.Run(ctx, cl)
	})
}

func (h *Hub) push(c *Client, resp ResponseFrame) {
	frame, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error("ws encode response", "id", resp.ID, "err", err)
		return
	}
	if !c.Push(frame) {
		h.logger.Warn("ws dropped response", "client", c.ID, "id", resp.ID)
	}
}
