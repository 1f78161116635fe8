package dispatch

import (
	"context"
	"time"

	"github.com/arko-chat/geobridge/internal/call"
	"github.com/arko-chat/geobridge/internal/options"
	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/value"
)

func (d *Dispatcher) getLocation(_ context.Context, c *call.Call, a Args) error {
	accuracy := sdk.AccuracyMedium
	if s, ok := a.String("desiredAccuracy"); ok {
		accuracy = sdk.Accuracies.Or(s, sdk.AccuracyMedium)
	}
	d.sdk.GetLocation(accuracy, d.onLocation(c))
	return nil
}

// trackOnce uses the caller's location only when latitude, longitude and
// accuracy are all present.
func (d *Dispatcher) trackOnce(_ context.Context, c *call.Call, a Args) error {
	if a.Has("latitude") && a.Has("longitude") && a.Has("accuracy") {
		if loc, ok := a.Point(); ok {
			d.sdk.TrackOnceWithLocation(loc, d.onTrack(c))
			return nil
		}
	}
	d.sdk.TrackOnce(d.onTrack(c))
	return nil
}

func (d *Dispatcher) startPreset(preset sdk.TrackingOptions) handler {
	return func(_ context.Context, c *call.Call, _ Args) error {
		d.sdk.StartTracking(preset)
		return d.done(c)
	}
}

func (d *Dispatcher) startTrackingCustom(_ context.Context, c *call.Call, a Args) error {
	obj, ok := a.Object("options")
	if !ok {
		return required("options")
	}
	opts, err := options.Tracking(obj)
	if err != nil {
		return invalid("options", err)
	}
	d.sdk.StartTracking(opts)
	return d.done(c)
}

func (d *Dispatcher) mockTracking(_ context.Context, c *call.Call, a Args) error {
	origin, ok := a.Location("origin")
	if !ok {
		return required("origin")
	}
	destination, ok := a.Location("destination")
	if !ok {
		return required("destination")
	}
	mode, ok := a.String("mode")
	if !ok {
		return required("mode")
	}

	params := sdk.MockTrackingParams{
		Origin:      origin,
		Destination: destination,
		Mode:        sdk.RouteModes.Or(mode, sdk.RouteModeCar),
		Steps:       a.Int("steps", options.DefaultMockSteps),
		Interval:    time.Duration(a.Int("interval", options.DefaultMockInterval)) * time.Second,
	}
	d.sdk.MockTracking(params, func(status sdk.Status, _ *sdk.Location, _ []sdk.Record, _ sdk.Record) {
		if !status.OK() {
			d.logger.Warn("mock tracking step failed", "id", c.ID, "status", status)
		}
	})
	return d.done(c)
}

func (d *Dispatcher) stopTracking(_ context.Context, c *call.Call, _ Args) error {
	d.sdk.StopTracking()
	return d.done(c)
}

func (d *Dispatcher) isTracking(_ context.Context, c *call.Call, _ Args) error {
	return d.resolve(c, value.Object(map[string]value.Value{
		"isTracking": value.Bool(d.sdk.IsTracking()),
	}))
}

func (d *Dispatcher) getTrackingOptions(_ context.Context, c *call.Call, _ Args) error {
	v, err := options.Encode(d.sdk.TrackingOptions())
	if err != nil {
		return err
	}
	return d.resolve(c, v)
}

func (d *Dispatcher) setForegroundServiceOptions(_ context.Context, c *call.Call, a Args) error {
	obj, ok := a.Object("options")
	if !ok {
		return required("options")
	}
	opts, err := options.ForegroundService(obj)
	if err != nil {
		return invalid("options", err)
	}
	d.sdk.SetForegroundServiceOptions(opts)
	return d.done(c)
}

func (d *Dispatcher) setNotificationOptions(_ context.Context, c *call.Call, a Args) error {
	obj, ok := a.Object("options")
	if !ok {
		return required("options")
	}
	opts, err := options.Notification(obj)
	if err != nil {
		return invalid("options", err)
	}
	d.sdk.SetNotificationOptions(opts)
	return d.done(c)
}
