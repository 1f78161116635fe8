package dispatch

import (
	"context"
	"fmt"

	"github.com/arko-chat/geobridge/internal/call"
	"github.com/arko-chat/geobridge/internal/options"
	"github.com/arko-chat/geobridge/internal/sdk"
)

func (d *Dispatcher) getContext(_ context.Context, c *call.Call, a Args) error {
	if loc, ok := a.Point(); ok {
		d.sdk.GetContextForLocation(loc, d.onContext(c))
		return nil
	}
	d.sdk.GetContext(d.onContext(c))
	return nil
}

func (d *Dispatcher) searchPlaces(_ context.Context, c *call.Call, a Args) error {
	params := sdk.SearchPlacesParams{
		Radius:     a.Int("radius", options.DefaultSearchRadius),
		Chains:     a.Strings("chains"),
		Categories: a.Strings("categories"),
		Groups:     a.Strings("groups"),
		Limit:      a.Int("limit", options.DefaultSearchLimit),
	}
	if near, ok := a.Location("near"); ok {
		params.Near = &near
	}
	if meta, ok := a.Native("chainMetadata"); ok {
		params.ChainMetadata = make(map[string]string, len(meta))
		for k, v := range meta {
			params.ChainMetadata[k] = fmt.Sprint(v)
		}
	}
	d.sdk.SearchPlaces(params, d.onNearby(c, "places"))
	return nil
}

func (d *Dispatcher) searchGeofences(_ context.Context, c *call.Call, a Args) error {
	params := sdk.SearchGeofencesParams{
		Radius: a.Int("radius", options.DefaultSearchRadius),
		Tags:   a.Strings("tags"),
		Limit:  a.Int("limit", options.DefaultSearchLimit),
	}
	if near, ok := a.Location("near"); ok {
		params.Near = &near
	}
	if meta, ok := a.Native("metadata"); ok {
		params.Metadata = meta
	}
	d.sdk.SearchGeofences(params, d.onNearby(c, "geofences"))
	return nil
}

func (d *Dispatcher) searchPoints(_ context.Context, c *call.Call, a Args) error {
	params := sdk.SearchPointsParams{
		Radius: a.Int("radius", options.DefaultSearchRadius),
		Tags:   a.Strings("tags"),
		Limit:  a.Int("limit", options.DefaultSearchLimit),
	}
	if near, ok := a.Location("near"); ok {
		params.Near = &near
	}
	d.sdk.SearchPoints(params, d.onNearby(c, "points"))
	return nil
}

func (d *Dispatcher) autocomplete(_ context.Context, c *call.Call, a Args) error {
	query, ok := a.String("query")
	if !ok {
		return required("query")
	}
	near, ok := a.Location("near")
	if !ok {
		return required("near")
	}
	country, _ := a.String("country")

	d.sdk.Autocomplete(sdk.AutocompleteParams{
		Query:   query,
		Near:    near,
		Layers:  a.Strings("layers"),
		Limit:   a.Int("limit", options.DefaultSearchLimit),
		Country: country,
	}, d.onAddresses(c))
	return nil
}

func (d *Dispatcher) geocode(_ context.Context, c *call.Call, a Args) error {
	query, ok := a.String("query")
	if !ok {
		return required("query")
	}
	d.sdk.Geocode(query, d.onAddresses(c))
	return nil
}

func (d *Dispatcher) reverseGeocode(_ context.Context, c *call.Call, a Args) error {
	if loc, ok := a.Point(); ok {
		d.sdk.ReverseGeocodeLocation(loc, d.onAddresses(c))
		return nil
	}
	d.sdk.ReverseGeocode(d.onAddresses(c))
	return nil
}

func (d *Dispatcher) ipGeocode(_ context.Context, c *call.Call, _ Args) error {
	d.sdk.IPGeocode(d.onIPAddress(c))
	return nil
}

func (d *Dispatcher) getDistance(_ context.Context, c *call.Call, a Args) error {
	destination, ok := a.Location("destination")
	if !ok {
		return required("destination")
	}
	if _, ok := a.Array("modes"); !ok {
		return required("modes")
	}
	units, ok := a.String("units")
	if !ok {
		return required("units")
	}

	params := sdk.DistanceParams{
		Destination: destination,
		Modes:       routeModes(a.Strings("modes")),
		Units:       sdk.ParseUnits(units),
	}
	if origin, ok := a.Location("origin"); ok {
		params.Origin = &origin
	}
	d.sdk.GetDistance(params, d.onRecord(c, "routes"))
	return nil
}

func (d *Dispatcher) getMatrix(_ context.Context, c *call.Call, a Args) error {
	origins, ok := a.Locations("origins")
	if !ok {
		return required("origins")
	}
	destinations, ok := a.Locations("destinations")
	if !ok {
		return required("destinations")
	}
	mode, ok := a.String("mode")
	if !ok {
		return required("mode")
	}
	units, ok := a.String("units")
	if !ok {
		return required("units")
	}

	d.sdk.GetMatrix(sdk.MatrixParams{
		Origins:      origins,
		Destinations: destinations,
		Mode:         sdk.RouteModes.Or(mode, sdk.RouteModeCar),
		Units:        sdk.ParseUnits(units),
	}, d.onRecord(c, "matrix"))
	return nil
}

func (d *Dispatcher) logConversion(_ context.Context, c *call.Call, a Args) error {
	name, ok := a.String("name")
	if !ok {
		return required("name")
	}
	params := sdk.ConversionParams{Name: name}
	if revenue, ok := a.Float("revenue"); ok {
		params.Revenue = &revenue
	}
	if meta, ok := a.Native("metadata"); ok {
		params.Metadata = meta
	}
	d.sdk.LogConversion(params, d.onRecord(c, "event"))
	return nil
}

func (d *Dispatcher) getVerifiedLocationToken(_ context.Context, c *call.Call, _ Args) error {
	d.sdk.GetVerifiedLocationToken(d.onRecord(c, "token"))
	return nil
}

// routeModes parses each name, falling back to car like every other
// route mode option.
func routeModes(names []string) []sdk.RouteMode {
	modes := make([]sdk.RouteMode, 0, len(names))
	for _, name := range names {
		modes = append(modes, sdk.RouteModes.Or(name, sdk.RouteModeCar))
	}
	return modes
}
