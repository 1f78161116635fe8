// Package dispatch maps command names sent by the application runtime to
// SDK operations. Dispatch never blocks on the SDK: synchronous commands
// settle their call before returning, asynchronous ones hand the SDK a
// callback that settles it later.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/arko-chat/geobridge/internal/bridge"
	"github.com/arko-chat/geobridge/internal/call"
	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/value"
)

// handler validates args, starts the SDK operation and, for synchronous
// commands, settles c. A returned error rejects c with its message.
type handler func(ctx context.Context, c *call.Call, a Args) error

type Dispatcher struct {
	sdk      sdk.SDK
	platform bridge.Platform
	logger   *slog.Logger
	handlers map[string]handler
}

func New(s sdk.SDK, platform bridge.Platform, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		sdk:      s,
		platform: platform,
		logger:   logger,
	}
	d.handlers = map[string]handler{
		"initialize":                   d.initialize,
		"setLogLevel":                  d.setLogLevel,
		"setUserId":                    d.setUserID,
		"getUserId":                    d.getUserID,
		"setDescription":               d.setDescription,
		"getDescription":               d.getDescription,
		"setMetadata":                  d.setMetadata,
		"getMetadata":                  d.getMetadata,
		"setAnonymousTrackingEnabled":  d.setAnonymousTrackingEnabled,
		"getLocationPermissionsStatus": d.getLocationPermissionsStatus,
		"requestLocationPermissions":   d.requestLocationPermissions,
		"getLocation":                  d.getLocation,
		"trackOnce":                    d.trackOnce,
		"startTrackingEfficient":       d.startPreset(sdk.TrackingEfficient),
		"startTrackingResponsive":      d.startPreset(sdk.TrackingResponsive),
		"startTrackingContinuous":      d.startPreset(sdk.TrackingContinuous),
		"startTrackingCustom":          d.startTrackingCustom,
		"mockTracking":                 d.mockTracking,
		"stopTracking":                 d.stopTracking,
		"isTracking":                   d.isTracking,
		"getTrackingOptions":           d.getTrackingOptions,
		"setForegroundServiceOptions":  d.setForegroundServiceOptions,
		"setNotificationOptions":       d.setNotificationOptions,
		"startTrip":                    d.startTrip,
		"updateTrip":                   d.updateTrip,
		"completeTrip":                 d.completeTrip,
		"cancelTrip":                   d.cancelTrip,
		"getTripOptions":               d.getTripOptions,
		"acceptEvent":                  d.acceptEvent,
		"rejectEvent":                  d.rejectEvent,
		"getContext":                   d.getContext,
		"searchPlaces":                 d.searchPlaces,
		"searchGeofences":              d.searchGeofences,
		"searchPoints":                 d.searchPoints,
		"autocomplete":                 d.autocomplete,
		"geocode":                      d.geocode,
		"reverseGeocode":               d.reverseGeocode,
		"ipGeocode":                    d.ipGeocode,
		"getDistance":                  d.getDistance,
		"getMatrix":                    d.getMatrix,
		"logConversion":                d.logConversion,
		"getVerifiedLocationToken":     d.getVerifiedLocationToken,
	}
	return d
}

// Commands returns the registered command names, sorted.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (d *Dispatcher) Dispatch(ctx context.Context, name string, args value.Value) *call.Call {
	return d.Run(ctx, call.New(name, args))
}

// Run dispatches an already constructed call, for transports that
// assign their own call ids.
func (d *Dispatcher) Run(ctx context.Context, c *call.Call) *call.Call {
	h, ok := d.handlers[c.Name]
	if !ok {
		d.reject(ctx, c, fmt.Errorf("%s is not implemented", c.Name))
		return c
	}

	d.logger.DebugContext(ctx, "dispatch", "call", c.Name, "id", c.ID)
	if err := h(ctx, c, Args{v: c.Args}); err != nil {
		d.reject(ctx, c, err)
	}
	return c
}

func (d *Dispatcher) reject(ctx context.Context, c *call.Call, err error) {
	d.logger.DebugContext(ctx, "call rejected", "call", c.Name, "id", c.ID, "err", err)
	if rerr := c.Reject(err.Error()); rerr != nil {
		d.logger.ErrorContext(ctx, "reject failed", "call", c.Name, "id", c.ID, "err", rerr)
	}
}

func (d *Dispatcher) resolve(c *call.Call, v value.Value) error {
	if err := c.Resolve(v); err != nil {
		d.logger.Error("resolve failed", "call", c.Name, "id", c.ID, "err", err)
	}
	return nil
}

// done resolves a setter-style command with no payload.
func (d *Dispatcher) done(c *call.Call) error {
	return d.resolve(c, value.Null())
}
