package dispatch

import (
	"github.com/arko-chat/geobridge/internal/call"
	"github.com/arko-chat/geobridge/internal/sdk"
)

type locationResult struct {
	status   sdk.Status
	location *sdk.Location
	stopped  bool
}

type trackResult struct {
	status   sdk.Status
	location *sdk.Location
	events   []sdk.Record
	user     sdk.Record
}

type tripResult struct {
	status sdk.Status
	trip   sdk.Record
	events []sdk.Record
}

type listResult struct {
	status   sdk.Status
	location *sdk.Location
	context  sdk.Record
	items    []sdk.Record
}

type recordResult struct {
	status sdk.Status
	record sdk.Record
	proxy  bool
}

func (d *Dispatcher) onLocation(c *call.Call) sdk.LocationCallback {
	settle := call.Await(c, d.logger, call.Strict, func(r locationResult) *call.Payload {
		return call.NewPayload(r.status).
			Require("location", r.location).
			Optional("stopped", r.stopped)
	})
	return func(status sdk.Status, location *sdk.Location, stopped bool) {
		settle(locationResult{status: status, location: location, stopped: stopped})
	}
}

func (d *Dispatcher) onTrack(c *call.Call) sdk.TrackCallback {
	settle := call.Await(c, d.logger, call.Strict, func(r trackResult) *call.Payload {
		p := call.NewPayload(r.status).
			Require("location", r.location).
			Require("user", r.user)
		return call.Objects(p, "events", r.events, true)
	})
	return func(status sdk.Status, location *sdk.Location, events []sdk.Record, user sdk.Record) {
		settle(trackResult{status: status, location: location, events: events, user: user})
	}
}

// onTrip always resolves, with whatever the SDK returned, so the
// application can inspect a failed trip status itself.
func (d *Dispatcher) onTrip(c *call.Call) sdk.TripCallback {
	settle := call.Await(c, d.logger, call.Lenient, func(r tripResult) *call.Payload {
		p := call.NewPayload(r.status).Optional("trip", r.trip)
		return call.Objects(p, "events", r.events, false)
	})
	return func(status sdk.Status, trip sdk.Record, events []sdk.Record) {
		settle(tripResult{status: status, trip: trip, events: events})
	}
}

func (d *Dispatcher) onContext(c *call.Call) sdk.ContextCallback {
	settle := call.Await(c, d.logger, call.Strict, func(r listResult) *call.Payload {
		return call.NewPayload(r.status).
			Require("location", r.location).
			Require("context", r.context)
	})
	return func(status sdk.Status, location *sdk.Location, context sdk.Record) {
		settle(listResult{status: status, location: location, context: context})
	}
}

// onNearby settles searches that return the search origin plus a list
// of objects under key.
func (d *Dispatcher) onNearby(c *call.Call, key string) func(sdk.Status, *sdk.Location, []sdk.Record) {
	settle := call.Await(c, d.logger, call.Strict, func(r listResult) *call.Payload {
		p := call.NewPayload(r.status).Require("location", r.location)
		return call.Objects(p, key, r.items, true)
	})
	return func(status sdk.Status, location *sdk.Location, items []sdk.Record) {
		settle(listResult{status: status, location: location, items: items})
	}
}

func (d *Dispatcher) onAddresses(c *call.Call) sdk.GeocodeCallback {
	settle := call.Await(c, d.logger, call.Strict, func(r listResult) *call.Payload {
		return call.Objects(call.NewPayload(r.status), "addresses", r.items, true)
	})
	return func(status sdk.Status, addresses []sdk.Record) {
		settle(listResult{status: status, items: addresses})
	}
}

func (d *Dispatcher) onIPAddress(c *call.Call) sdk.IPGeocodeCallback {
	settle := call.Await(c, d.logger, call.Strict, func(r recordResult) *call.Payload {
		return call.NewPayload(r.status).
			Require("address", r.record).
			Optional("proxy", r.proxy)
	})
	return func(status sdk.Status, address sdk.Record, proxy bool) {
		settle(recordResult{status: status, record: address, proxy: proxy})
	}
}

// onRecord settles operations whose payload is a single object under key.
func (d *Dispatcher) onRecord(c *call.Call, key string) func(sdk.Status, sdk.Record) {
	settle := call.Await(c, d.logger, call.Strict, func(r recordResult) *call.Payload {
		return call.NewPayload(r.status).Require(key, r.record)
	})
	return func(status sdk.Status, record sdk.Record) {
		settle(recordResult{status: status, record: record})
	}
}
