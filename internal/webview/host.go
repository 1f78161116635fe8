// Package webview hosts the bridge inside a desktop webview window. The
// page calls the bound __geobridgeCall function, which returns at once;
// settlements and relay notifications are evaluated back into the page
// on the UI thread.
package webview

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/arko-chat/geobridge/internal/call"
	"github.com/arko-chat/geobridge/internal/relay"
	"github.com/arko-chat/geobridge/internal/value"
)

const BindingName = "__geobridgeCall"

// Window is the part of webview.WebView the host needs.
type Window interface {
	Bind(name string, f any) error
	Dispatch(f func())
	Eval(js string)
}

type Runner interface {
	Run(ctx context.Context, c *call.Call) *call.Call
}

var _ relay.Notifier = (*Host)(nil)

type Host struct {
	ctx    context.Context
	w      Window
	runner Runner
	logger *slog.Logger
}

func New(ctx context.Context, w Window, runner Runner, logger *slog.Logger) *Host {
	return &Host{ctx: ctx, w: w, runner: runner, logger: logger}
}

// Bind installs the call binding. It must run before the page loads.
func (h *Host) Bind() error {
	if err := h.w.Bind(BindingName, h.handleCall); err != nil {
		return fmt.Errorf("webview: bind %s: %w", BindingName, err)
	}
	return nil
}

func (h *Host) handleCall(id, command string, args value.Value) {
	c := call.NewWithID(id, command, args)
	c.Observe(call.SinkFunc(h.settle))
	h.runner.Run(h.ctx, c)
}

func (h *Host) settle(c *call.Call, o call.Outcome) {
	var payload any = o.Reason
	if !o.Rejected {
		payload = o.Payload
	}
	js, err := script("settle", c.ID, !o.Rejected, payload)
	if err != nil {
		h.logger.Error("webview encode settlement", "call", c.Name, "id", c.ID, "err", err)
		return
	}
	h.w.Dispatch(func() { h.w.Eval(js) })
}

// Notify implements relay.Notifier.
func (h *Host) Notify(channel string, data value.Value) {
	js, err := script("emit", channel, data)
	if err != nil {
		h.logger.Error("webview encode event", "channel", channel, "err", err)
		return
	}
	h.w.Dispatch(func() { h.w.Eval(js) })
}

// script renders window.geobridge.<fn>(args...) with JSON-encoded args.
func script(fn string, args ...any) (string, error) {
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("window.geobridge && window.geobridge.%s.apply(null, %s);", fn, encoded), nil
}
