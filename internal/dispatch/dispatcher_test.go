package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/arko-chat/geobridge/internal/bridge"
	"github.com/arko-chat/geobridge/internal/call"
	"github.com/arko-chat/geobridge/internal/permission"
	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/sdk/sdktest"
	"github.com/arko-chat/geobridge/internal/value"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *sdktest.Fake, *bridge.Static) {
	t.Helper()
	fake := sdktest.New()
	platform := bridge.NewStatic(30, permission.Grants{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(fake, platform, logger), fake, platform
}

func args(t *testing.T, raw string) value.Value {
	t.Helper()
	var v value.Value
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("bad args %s: %v", raw, err)
	}
	return v
}

func mustOutcome(t *testing.T, c *call.Call) call.Outcome {
	t.Helper()
	o, ok := c.Outcome()
	if !ok {
		t.Fatalf("%s: call still pending", c.Name)
	}
	return o
}

func TestUnknownCommand(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	o := mustOutcome(t, d.Dispatch(context.Background(), "teleport", value.Null()))
	if !o.Rejected || o.Reason != "teleport is not implemented" {
		t.Errorf("outcome = %+v", o)
	}
}

func TestSyncCommandsSettleBeforeReturn(t *testing.T) {
	tests := []struct {
		name   string
		args   string
		method string
	}{
		{"initialize", `{"publishableKey":"prj_test_pk_0"}`, "Initialize"},
		{"setLogLevel", `{"level":"DEBUG"}`, "SetLogLevel"},
		{"setUserId", `{"userId":"u-1"}`, "SetUserID"},
		{"getUserId", `{}`, "UserID"},
		{"setDescription", `{"description":"courier"}`, "SetDescription"},
		{"getDescription", `{}`, "Description"},
		{"setMetadata", `{"metadata":{"vip":true}}`, "SetMetadata"},
		{"getMetadata", `{}`, "Metadata"},
		{"setAnonymousTrackingEnabled", `{"enabled":true}`, "SetAnonymousTrackingEnabled"},
		{"startTrackingEfficient", `{}`, "StartTracking"},
		{"startTrackingResponsive", `{}`, "StartTracking"},
		{"startTrackingContinuous", `{}`, "StartTracking"},
		{"startTrackingCustom", `{"options":{"desiredAccuracy":"high"}}`, "StartTracking"},
		{"mockTracking", `{"origin":{"latitude":1,"longitude":2},"destination":{"latitude":3,"longitude":4},"mode":"car"}`, "MockTracking"},
		{"stopTracking", `{}`, "StopTracking"},
		{"isTracking", `{}`, "IsTracking"},
		{"getTrackingOptions", `{}`, "TrackingOptions"},
		{"setForegroundServiceOptions", `{"options":{"text":"On"}}`, "SetForegroundServiceOptions"},
		{"setNotificationOptions", `{"options":{"iconColor":"#ff0000"}}`, "SetNotificationOptions"},
		{"getTripOptions", `{}`, "TripOptions"},
		{"acceptEvent", `{"eventId":"e1","verifiedPlaceId":"p1"}`, "AcceptEvent"},
		{"rejectEvent", `{"eventId":"e1"}`, "RejectEvent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, fake, _ := newTestDispatcher(t)

			o := mustOutcome(t, d.Dispatch(context.Background(), tt.name, args(t, tt.args)))
			if o.Rejected {
				t.Fatalf("rejected: %s", o.Reason)
			}
			if !fake.Called(tt.method) {
				t.Errorf("%s not called; calls = %v", tt.method, fake.Calls())
			}
		})
	}
}

func TestAsyncCommandsSettleOnlyOnCallback(t *testing.T) {
	loc := &sdk.Location{Latitude: 40.78, Longitude: -73.97, Accuracy: 12}
	user := sdk.Record{"_id": "u1"}
	list := []sdk.Record{{"_id": "x1"}}

	tests := []struct {
		name string
		args string
		fire func(f *sdktest.Fake)
		keys []string
	}{
		{"getLocation", `{"desiredAccuracy":"high"}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.LocationCallback](f, "GetLocation")(sdk.StatusSuccess, loc, false)
		}, []string{"status", "location", "stopped"}},
		{"trackOnce", `{}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.TrackCallback](f, "TrackOnce")(sdk.StatusSuccess, loc, list, user)
		}, []string{"status", "location", "events", "user"}},
		{"startTrip", `{"options":{"externalId":"t1"}}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.TripCallback](f, "StartTrip")(sdk.StatusSuccess, sdk.Record{"externalId": "t1"}, list)
		}, []string{"status", "trip", "events"}},
		{"updateTrip", `{"options":{"externalId":"t1"},"status":"ARRIVED"}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.TripCallback](f, "UpdateTrip")(sdk.StatusSuccess, sdk.Record{"externalId": "t1"}, nil)
		}, []string{"status", "trip"}},
		{"completeTrip", `{}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.TripCallback](f, "CompleteTrip")(sdk.StatusSuccess, nil, nil)
		}, []string{"status"}},
		{"cancelTrip", `{}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.TripCallback](f, "CancelTrip")(sdk.StatusSuccess, nil, nil)
		}, []string{"status"}},
		{"getContext", `{}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.ContextCallback](f, "GetContext")(sdk.StatusSuccess, loc, sdk.Record{"geofences": []any{}})
		}, []string{"status", "location", "context"}},
		{"searchPlaces", `{"radius":500,"chains":["starbucks"]}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.SearchPlacesCallback](f, "SearchPlaces")(sdk.StatusSuccess, loc, list)
		}, []string{"status", "location", "places"}},
		{"searchGeofences", `{"tags":["store"]}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.SearchGeofencesCallback](f, "SearchGeofences")(sdk.StatusSuccess, loc, list)
		}, []string{"status", "location", "geofences"}},
		{"searchPoints", `{"tags":["dock"]}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.SearchPointsCallback](f, "SearchPoints")(sdk.StatusSuccess, loc, list)
		}, []string{"status", "location", "points"}},
		{"autocomplete", `{"query":"brooklyn","near":{"latitude":40.7,"longitude":-74}}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.GeocodeCallback](f, "Autocomplete")(sdk.StatusSuccess, list)
		}, []string{"status", "addresses"}},
		{"geocode", `{"query":"20 jay st"}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.GeocodeCallback](f, "Geocode")(sdk.StatusSuccess, list)
		}, []string{"status", "addresses"}},
		{"reverseGeocode", `{"latitude":40.7,"longitude":-74}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.GeocodeCallback](f, "ReverseGeocodeLocation")(sdk.StatusSuccess, list)
		}, []string{"status", "addresses"}},
		{"ipGeocode", `{}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.IPGeocodeCallback](f, "IPGeocode")(sdk.StatusSuccess, sdk.Record{"city": "Brooklyn"}, true)
		}, []string{"status", "address", "proxy"}},
		{"getDistance", `{"destination":{"latitude":1,"longitude":2},"modes":["foot","car"],"units":"metric"}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.RouteCallback](f, "GetDistance")(sdk.StatusSuccess, sdk.Record{"car": map[string]any{}})
		}, []string{"status", "routes"}},
		{"getMatrix", `{"origins":[{"latitude":1,"longitude":2}],"destinations":[{"latitude":3,"longitude":4}],"mode":"car","units":"imperial"}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.MatrixCallback](f, "GetMatrix")(sdk.StatusSuccess, sdk.Record{"matrix": []any{}})
		}, []string{"status", "matrix"}},
		{"logConversion", `{"name":"purchase","revenue":20.5}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.LogConversionCallback](f, "LogConversion")(sdk.StatusSuccess, sdk.Record{"type": "purchase"})
		}, []string{"status", "event"}},
		{"getVerifiedLocationToken", `{}`, func(f *sdktest.Fake) {
			sdktest.Callback[sdk.TokenCallback](f, "GetVerifiedLocationToken")(sdk.StatusSuccess, sdk.Record{"token": "abc"})
		}, []string{"status", "token"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, fake, _ := newTestDispatcher(t)

			c := d.Dispatch(context.Background(), tt.name, args(t, tt.args))
			if c.Settled() {
				o, _ := c.Outcome()
				t.Fatalf("settled before the callback: %+v", o)
			}

			tt.fire(fake)

			o := mustOutcome(t, c)
			if o.Rejected {
				t.Fatalf("rejected: %s", o.Reason)
			}
			if got := o.Payload.Keys(); !slices.Equal(got, sorted(tt.keys)) {
				t.Errorf("keys = %v, want %v", got, sorted(tt.keys))
			}
		})
	}
}

func sorted(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}

func TestTrackOnceNeedsAccuracyForLocationVariant(t *testing.T) {
	d, fake, _ := newTestDispatcher(t)

	d.Dispatch(context.Background(), "trackOnce", args(t, `{"latitude":40.7,"longitude":-74}`))
	if !fake.Called("TrackOnce") || fake.Called("TrackOnceWithLocation") {
		t.Fatalf("calls = %v, want plain TrackOnce", fake.Calls())
	}

	d, fake, _ = newTestDispatcher(t)
	d.Dispatch(context.Background(), "trackOnce", args(t, `{"latitude":40.7,"longitude":-74,"accuracy":65}`))
	loc, ok := fake.Arg("TrackOnceWithLocation").(sdk.Location)
	if !ok {
		t.Fatalf("calls = %v, want TrackOnceWithLocation", fake.Calls())
	}
	if loc.Accuracy != 65 || loc.Latitude != 40.7 {
		t.Errorf("location = %+v", loc)
	}
}

func TestGetDistanceRequiresModes(t *testing.T) {
	tests := []struct {
		name  string
		modes string
	}{
		{"absent", ``},
		{"null", `,"modes":null`},
		{"string", `,"modes":"car"`},
		{"number", `,"modes":3`},
		{"object", `,"modes":{"car":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, fake, _ := newTestDispatcher(t)

			c := d.Dispatch(context.Background(), "getDistance",
				args(t, `{"destination":{"latitude":1,"longitude":2},"units":"metric"`+tt.modes+`}`))

			o := mustOutcome(t, c)
			if !o.Rejected || o.Reason != "modes is required" {
				t.Errorf("outcome = %+v", o)
			}
			if fake.Called("GetDistance") {
				t.Error("SDK invoked despite validation failure")
			}
		})
	}
}

func TestRequiredArguments(t *testing.T) {
	tests := []struct {
		name   string
		args   string
		reason string
	}{
		{"initialize", `{}`, "publishableKey is required"},
		{"setMetadata", `{"metadata":"nope"}`, "metadata is required"},
		{"setAnonymousTrackingEnabled", `{}`, "enabled is required"},
		{"requestLocationPermissions", `{}`, "background is required"},
		{"startTrackingCustom", `{}`, "options is required"},
		{"startTrip", `{}`, "options is required"},
		{"startTrip", `{"options":{"mode":"car"}}`, "externalId is required"},
		{"mockTracking", `{"destination":{"latitude":1,"longitude":2},"mode":"car"}`, "origin is required"},
		{"acceptEvent", `{}`, "eventId is required"},
		{"autocomplete", `{"query":"x"}`, "near is required"},
		{"geocode", `{}`, "query is required"},
		{"getDistance", `{"modes":["car"],"units":"metric"}`, "destination is required"},
		{"getDistance", `{"destination":{"latitude":1,"longitude":2},"modes":["car"]}`, "units is required"},
		{"getMatrix", `{"destinations":[],"mode":"car","units":"metric"}`, "origins is required"},
		{"logConversion", `{}`, "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name+" "+tt.reason, func(t *testing.T) {
			d, fake, _ := newTestDispatcher(t)

			o := mustOutcome(t, d.Dispatch(context.Background(), tt.name, args(t, tt.args)))
			if !o.Rejected || o.Reason != tt.reason {
				t.Errorf("outcome = %+v, want rejection %q", o, tt.reason)
			}
			if calls := fake.Calls(); len(calls) != 0 {
				t.Errorf("SDK calls = %v, want none", calls)
			}
		})
	}
}

func TestInvalidArgumentsNameTheField(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    string
		reason  string
		method  string
	}{
		{"unknown log level", "setLogLevel", `{"level":"verbose"}`, "level must be one of none, error, warning, info, debug", "SetLogLevel"},
		{"unknown trip status", "updateTrip", `{"options":{"externalId":"t1"},"status":"teleported"}`,
			"status must be one of unknown, started, approaching, arrived, completed, canceled, expired", "UpdateTrip"},
		{"wrong option type", "startTrip", `{"options":{"externalId":5}}`, "externalId is invalid", "StartTrip"},
		{"negative tracking interval", "startTrackingCustom", `{"options":{"stopDuration":-1}}`, "stopDuration must not be negative", "StartTracking"},
		{"bad tracking options on trip", "startTrip", `{"options":{"externalId":"t1"},"trackingOptions":{"stopDistance":"far"}}`, "stopDistance is invalid", "StartTrip"},
		{"importance out of range", "setForegroundServiceOptions", `{"options":{"importance":9}}`, "importance must be between 0 and 5", "SetForegroundServiceOptions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, fake, _ := newTestDispatcher(t)

			o := mustOutcome(t, d.Dispatch(context.Background(), tt.command, args(t, tt.args)))
			if !o.Rejected || o.Reason != tt.reason {
				t.Errorf("outcome = %+v, want rejection %q", o, tt.reason)
			}
			if fake.Called(tt.method) {
				t.Errorf("%s invoked despite invalid arguments", tt.method)
			}
		})
	}
}

func TestInvalidFallsBackToArgumentName(t *testing.T) {
	err := invalid("options", errors.New("options: decode: unexpected end of JSON input"))
	if err.Error() != "options is invalid" {
		t.Errorf("err = %q", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "options" {
		t.Errorf("err = %#v, want ValidationError", err)
	}
}

func TestRouteModeIsCaseInsensitive(t *testing.T) {
	for _, mode := range []string{"CAR", "car", "hovercraft"} {
		d, fake, _ := newTestDispatcher(t)
		d.Dispatch(context.Background(), "mockTracking", args(t,
			`{"origin":{"latitude":1,"longitude":2},"destination":{"latitude":3,"longitude":4},"mode":"`+mode+`","steps":3}`))

		params, ok := fake.Arg("MockTracking").(sdk.MockTrackingParams)
		if !ok {
			t.Fatalf("%s: MockTracking not called", mode)
		}
		if params.Mode != sdk.RouteModeCar {
			t.Errorf("%s: mode = %s, want car", mode, params.Mode)
		}
		if params.Steps != 3 || params.Origin.Accuracy != 5 {
			t.Errorf("%s: params = %+v", mode, params)
		}
	}
}

func TestPermissionStatus(t *testing.T) {
	d, _, platform := newTestDispatcher(t)
	platform.SetGrants(permission.Grants{Fine: permission.Granted, Coarse: permission.Granted, Background: permission.Granted})

	o := mustOutcome(t, d.Dispatch(context.Background(), "getLocationPermissionsStatus", value.Null()))
	status, _ := o.Payload.Get("status")
	if s, _ := status.AsString(); s != "GRANTED_BACKGROUND" {
		t.Errorf("status = %v", status)
	}
}

func TestRequestLocationPermissions(t *testing.T) {
	d, _, platform := newTestDispatcher(t)

	mustOutcome(t, d.Dispatch(context.Background(), "requestLocationPermissions", args(t, `{"background":true}`)))
	reqs := platform.Requests()
	if len(reqs) != 1 || !slices.Contains(reqs[0], permission.BackgroundLocation) {
		t.Errorf("requests = %v", reqs)
	}

	legacy := bridge.NewStatic(22, permission.Grants{})
	d = New(sdktest.New(), legacy, d.logger)
	o := mustOutcome(t, d.Dispatch(context.Background(), "requestLocationPermissions", args(t, `{"background":false}`)))
	if o.Rejected || len(legacy.Requests()) != 0 {
		t.Errorf("pre-runtime platform: outcome = %+v, requests = %v", o, legacy.Requests())
	}
}

func TestAsyncRejectsWithStatus(t *testing.T) {
	d, fake, _ := newTestDispatcher(t)

	c := d.Dispatch(context.Background(), "geocode", args(t, `{"query":"nowhere"}`))
	sdktest.Callback[sdk.GeocodeCallback](fake, "Geocode")(sdk.StatusErrorNotFound, nil)

	o := mustOutcome(t, c)
	if !o.Rejected || o.Reason != "ERROR_NOT_FOUND" {
		t.Errorf("outcome = %+v", o)
	}
}

func TestTripResolvesOnFailureStatus(t *testing.T) {
	d, fake, _ := newTestDispatcher(t)

	c := d.Dispatch(context.Background(), "completeTrip", value.Null())
	sdktest.Callback[sdk.TripCallback](fake, "CompleteTrip")(sdk.StatusErrorBadRequest, nil, nil)

	o := mustOutcome(t, c)
	if o.Rejected {
		t.Fatalf("trip lifecycle rejected: %+v", o)
	}
	status, _ := o.Payload.Get("status")
	if s, _ := status.AsString(); s != "ERROR_BAD_REQUEST" {
		t.Errorf("status = %v", status)
	}
}

func TestGetters(t *testing.T) {
	d, fake, _ := newTestDispatcher(t)
	fake.User = "u-42"
	fake.Meta = map[string]any{"tier": "gold", "gone": nil}

	o := mustOutcome(t, d.Dispatch(context.Background(), "getUserId", value.Null()))
	if v, _ := o.Payload.Get("userId"); !value.Equal(v, value.String("u-42")) {
		t.Errorf("userId = %v", v)
	}

	o = mustOutcome(t, d.Dispatch(context.Background(), "getMetadata", value.Null()))
	meta, _ := o.Payload.Get("metadata")
	if !meta.Has("tier") || meta.Has("gone") {
		t.Errorf("metadata = %v", meta)
	}

	fake.User = ""
	o = mustOutcome(t, d.Dispatch(context.Background(), "getUserId", value.Null()))
	if o.Payload.Has("userId") {
		t.Errorf("empty userId should be absent: %v", o.Payload)
	}
}

func TestSearchPointsDefaults(t *testing.T) {
	tests := []struct {
		name string
		args string
		want sdk.SearchPointsParams
	}{
		{"defaults", `{}`, sdk.SearchPointsParams{Radius: 1000, Limit: 10}},
		{"explicit", `{"radius":250,"tags":["dock","parking"],"limit":3}`, sdk.SearchPointsParams{Radius: 250, Tags: []string{"dock", "parking"}, Limit: 3}},
		{"near", `{"near":{"latitude":40.7,"longitude":-74}}`, sdk.SearchPointsParams{Near: &sdk.Location{Latitude: 40.7, Longitude: -74}, Radius: 1000, Limit: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, fake, _ := newTestDispatcher(t)
			d.Dispatch(context.Background(), "searchPoints", args(t, tt.args))

			got, ok := fake.Arg("SearchPoints").(sdk.SearchPointsParams)
			if !ok {
				t.Fatalf("SearchPoints not called; calls = %v", fake.Calls())
			}
			if got.Radius != tt.want.Radius || got.Limit != tt.want.Limit || !slices.Equal(got.Tags, tt.want.Tags) {
				t.Errorf("params = %+v, want %+v", got, tt.want)
			}
			if (got.Near == nil) != (tt.want.Near == nil) {
				t.Fatalf("near = %v, want %v", got.Near, tt.want.Near)
			}
			if got.Near != nil && (got.Near.Latitude != tt.want.Near.Latitude || got.Near.Longitude != tt.want.Near.Longitude) {
				t.Errorf("near = %+v", *got.Near)
			}
		})
	}
}

func TestCommandsListed(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	names := d.Commands()
	for _, want := range []string{"initialize", "trackOnce", "searchPoints", "getDistance", "getVerifiedLocationToken"} {
		if !slices.Contains(names, want) {
			t.Errorf("%s missing from %v", want, names)
		}
	}
	if !slices.IsSorted(names) {
		t.Error("commands not sorted")
	}
}
