package dispatch

import (
	"context"

	"github.com/arko-chat/geobridge/internal/call"
	"github.com/arko-chat/geobridge/internal/options"
	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/value"
)

func (d *Dispatcher) startTrip(_ context.Context, c *call.Call, a Args) error {
	obj, ok := a.Object("options")
	if !ok {
		return required("options")
	}
	trip, err := options.Trip(obj)
	if err != nil {
		return invalid("options", err)
	}

	var tracking *sdk.TrackingOptions
	if obj, ok := a.Object("trackingOptions"); ok {
		opts, err := options.Tracking(obj)
		if err != nil {
			return invalid("trackingOptions", err)
		}
		tracking = &opts
	}

	d.sdk.StartTrip(trip, tracking, d.onTrip(c))
	return nil
}

func (d *Dispatcher) updateTrip(_ context.Context, c *call.Call, a Args) error {
	obj, ok := a.Object("options")
	if !ok {
		return required("options")
	}
	trip, err := options.Trip(obj)
	if err != nil {
		return invalid("options", err)
	}

	status := sdk.TripStatusUnknown
	if s, ok := a.String("status"); ok {
		if status, err = sdk.TripStatuses.Parse(s); err != nil {
			return invalid("status", err)
		}
	}

	d.sdk.UpdateTrip(trip, status, d.onTrip(c))
	return nil
}

func (d *Dispatcher) completeTrip(_ context.Context, c *call.Call, _ Args) error {
	d.sdk.CompleteTrip(d.onTrip(c))
	return nil
}

func (d *Dispatcher) cancelTrip(_ context.Context, c *call.Call, _ Args) error {
	d.sdk.CancelTrip(d.onTrip(c))
	return nil
}

// getTripOptions resolves null when no trip is active.
func (d *Dispatcher) getTripOptions(_ context.Context, c *call.Call, _ Args) error {
	trip := d.sdk.TripOptions()
	if trip == nil {
		return d.resolve(c, value.Null())
	}
	v, err := options.Encode(trip)
	if err != nil {
		return err
	}
	return d.resolve(c, v)
}
