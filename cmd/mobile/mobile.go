// Package mobile is the gomobile entry point. Native code registers its
// platform, starts the bridge and either loads the returned URL in a
// webview or drives commands directly through Call.
package mobile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/arko-chat/geobridge/internal/app"
	"github.com/arko-chat/geobridge/internal/bridge"
	"github.com/arko-chat/geobridge/internal/call"
	"github.com/arko-chat/geobridge/internal/relay"
	"github.com/arko-chat/geobridge/internal/value"
)

var (
	// mu is held for reading while a Call dispatches, so Stop waits for
	// in-flight dispatches before closing the SDK.
	mu       sync.RWMutex
	stopFunc func()
	current  *app.App
)

// Settler receives the outcome of one Call. payload is JSON: the
// resolved value, or the rejection reason as a string.
type Settler interface {
	Settle(ok bool, payload string)
}

// Listener receives relay notifications as channel name and JSON data.
type Listener interface {
	Notify(channel string, data string)
}

func RegisterPlatform(p bridge.NativePlatform) {
	bridge.Register(p)
}

// Start runs the bridge on a loopback port and returns its URL.
func Start(dataDir string, publishableKey string) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	if stopFunc != nil {
		return "", fmt.Errorf("bridge already running")
	}

	platform, err := bridge.Safe()
	if err != nil {
		return "", fmt.Errorf("call RegisterPlatform before Start: %w", err)
	}

	slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	settingsDir := filepath.Join(dataDir, "settings")
	if err := os.MkdirAll(settingsDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create settings directory: %w", err)
	}

	a, err := app.New(app.Options{
		DataDir:        settingsDir,
		PublishableKey: publishableKey,
		Platform:       platform,
		Logger:         slogger,
		Quiet:          true,
	})
	if err != nil {
		return "", err
	}
	a.Relay.Attach(a.Hub)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		a.Close()
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	addr := fmt.Sprintf("http://127.0.0.1:%d", listener.Addr().(*net.TCPAddr).Port)
	slogger.Info("mobile bridge starting", "addr", addr)

	srv := &http.Server{Handler: a.Handler}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", "err", err)
		}
	}()

	current = a
	stopFunc = func() {
		srv.Close()
		listener.Close()
		if err := a.Close(); err != nil {
			slogger.Error("bridge close", "err", err)
		}
		current = nil
	}

	return addr, nil
}

func Stop() {
	mu.Lock()
	defer mu.Unlock()

	if stopFunc != nil {
		stopFunc()
		stopFunc = nil
	}
}

// Call dispatches command with argsJSON (empty for no args). s is
// called exactly once, possibly on another goroutine. s must not call
// Stop before returning.
func Call(command string, argsJSON string, s Settler) error {
	mu.RLock()
	defer mu.RUnlock()
	a := current
	if a == nil {
		return fmt.Errorf("bridge not running")
	}

	args := value.Null()
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return fmt.Errorf("parse args: %w", err)
		}
	}

	c := call.New(command, args)
	c.Observe(call.SinkFunc(func(c *call.Call, o call.Outcome) {
		var body any = o.Reason
		if !o.Rejected {
			body = o.Payload
		}
		data, err := json.Marshal(body)
		if err != nil {
			a.Logger.Error("encode settlement", "call", c.Name, "id", c.ID, "err", err)
			data = []byte("null")
		}
		s.Settle(!o.Rejected, string(data))
	}))
	a.Dispatcher.Run(context.Background(), c)
	return nil
}

// Listen routes notifications to l instead of the websocket clients.
// A nil l restores websocket delivery.
func Listen(l Listener) error {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return fmt.Errorf("bridge not running")
	}

	if l == nil {
		current.Relay.Attach(current.Hub)
		return nil
	}
	log := current.Logger
	current.Relay.Attach(relay.NotifierFunc(func(channel string, data value.Value) {
		encoded, err := json.Marshal(data)
		if err != nil {
			log.Error("encode notification", "channel", channel, "err", err)
			return
		}
		l.Notify(channel, string(encoded))
	}))
	return nil
}
