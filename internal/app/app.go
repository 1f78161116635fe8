// Package app assembles the bridge: the simulated SDK, the dispatcher,
// the relay and the HTTP/websocket surface. Entry points decide where
// the result is served and which runtime the relay is attached to.
package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arko-chat/geobridge/internal/bridge"
	"github.com/arko-chat/geobridge/internal/dispatch"
	"github.com/arko-chat/geobridge/internal/handlers"
	"github.com/arko-chat/geobridge/internal/logger"
	"github.com/arko-chat/geobridge/internal/permission"
	"github.com/arko-chat/geobridge/internal/relay"
	"github.com/arko-chat/geobridge/internal/router"
	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/sdk/sim"
	"github.com/arko-chat/geobridge/internal/ws"
)

type Options struct {
	DataDir        string
	CatalogPath    string
	PublishableKey string
	TokenKey       []byte
	CallTimeout    time.Duration
	Platform       bridge.Platform

	Logger *slog.Logger
	// Level, if set, follows setLogLevel calls.
	Level *slog.LevelVar
	// Quiet disables request logging.
	Quiet          bool
	AllowedOrigins []string
}

type App struct {
	Logger     *slog.Logger
	SDK        *sim.SDK
	Platform   bridge.Platform
	Dispatcher *dispatch.Dispatcher
	Relay      *relay.Relay
	Hub        *ws.Hub
	Handler    http.Handler
}

func New(opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	platform := opts.Platform
	if platform == nil {
		platform = bridge.Desktop()
	}

	var catalog *sim.Catalog
	if opts.CatalogPath != "" {
		c, err := sim.LoadCatalog(opts.CatalogPath)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	s, err := sim.New(sim.Options{
		DataDir:    opts.DataDir,
		Catalog:    catalog,
		TokenKey:   opts.TokenKey,
		Authorized: func() bool { return LocationAuthorized(platform) },
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("app: start sdk: %w", err)
	}

	rel := relay.New(log)
	s.SetReceiver(rel)
	if opts.PublishableKey != "" {
		s.Initialize(opts.PublishableKey)
	} else {
		log.Warn("no publishable key configured; calls fail until initialize")
	}

	var surface sdk.SDK = s
	if opts.Level != nil {
		surface = leveled{SDK: s, level: opts.Level}
	}
	disp := dispatch.New(surface, platform, log)

	hub := ws.NewHub(log)
	h := handlers.New(disp, hub, log, opts.CallTimeout)

	return &App{
		Logger:     log,
		SDK:        s,
		Platform:   platform,
		Dispatcher: disp,
		Relay:      rel,
		Hub:        hub,
		Handler:    router.New(h, router.Options{Quiet: opts.Quiet, AllowedOrigins: opts.AllowedOrigins}),
	}, nil
}

// Close detaches the relay and shuts the SDK down.
func (a *App) Close() error {
	a.Relay.Detach()
	if n := a.Relay.Dropped(); n > 0 {
		a.Logger.Info("notifications dropped while detached", "count", n)
	}
	if err := a.SDK.Close(); err != nil {
		return fmt.Errorf("app: close sdk: %w", err)
	}
	return nil
}

// LocationAuthorized reports whether the platform currently grants
// foreground location.
func LocationAuthorized(p bridge.Platform) bool {
	switch permission.Resolve(p.Grants(), permission.CapabilityFor(p.APILevel())) {
	case permission.GrantedForeground, permission.GrantedBackground:
		return true
	}
	return false
}

// leveled keeps the process log level in step with the SDK log level.
type leveled struct {
	sdk.SDK
	level *slog.LevelVar
}

func (l leveled) SetLogLevel(level sdk.LogLevel) {
	l.SDK.SetLogLevel(level)
	l.level.Set(logger.FromSDK(level))
}
