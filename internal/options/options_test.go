package options

import (
	"errors"
	"testing"

	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/value"
)

func obj(fields map[string]value.Value) value.Value {
	return value.Object(fields)
}

func TestTrackingDefaultsAndOverrides(t *testing.T) {
	opts, err := Tracking(obj(map[string]value.Value{
		"desiredMovingUpdateInterval": value.Int(60),
		"desiredAccuracy":             value.String("HIGH"),
		"replay":                      value.String("ALL"),
		"unknownKey":                  value.String("ignored"),
	}))
	if err != nil {
		t.Fatalf("Tracking: %v", err)
	}

	if opts.DesiredMovingUpdateInterval != 60 {
		t.Errorf("desiredMovingUpdateInterval = %d", opts.DesiredMovingUpdateInterval)
	}
	if opts.DesiredAccuracy != sdk.AccuracyHigh {
		t.Errorf("desiredAccuracy = %s", opts.DesiredAccuracy)
	}
	if opts.Replay != sdk.ReplayAll {
		t.Errorf("replay = %s", opts.Replay)
	}
	if opts.DesiredStoppedUpdateInterval != sdk.TrackingEfficient.DesiredStoppedUpdateInterval {
		t.Errorf("stopped interval lost its default: %d", opts.DesiredStoppedUpdateInterval)
	}
}

func TestTrackingUnknownAccuracyFallsBack(t *testing.T) {
	opts, err := Tracking(obj(map[string]value.Value{
		"desiredAccuracy": value.String("pinpoint"),
	}))
	if err != nil {
		t.Fatalf("Tracking: %v", err)
	}
	if opts.DesiredAccuracy != sdk.AccuracyMedium {
		t.Errorf("desiredAccuracy = %s, want medium", opts.DesiredAccuracy)
	}
}

func TestTrackingValidation(t *testing.T) {
	_, err := Tracking(obj(map[string]value.Value{
		"useStoppedGeofence":    value.Bool(true),
		"stoppedGeofenceRadius": value.Int(0),
	}))
	var invalid *InvalidError
	if !errors.As(err, &invalid) || invalid.Field != "stoppedGeofenceRadius" {
		t.Fatalf("err = %v, want stoppedGeofenceRadius invalid", err)
	}

	_, err = Tracking(obj(map[string]value.Value{"stopDistance": value.Int(-1)}))
	if !errors.As(err, &invalid) || invalid.Field != "stopDistance" {
		t.Fatalf("err = %v, want stopDistance invalid", err)
	}
}

func TestTrackingRequiresObject(t *testing.T) {
	if _, err := Tracking(value.Null()); !errors.Is(err, ErrNotObject) {
		t.Errorf("err = %v, want ErrNotObject", err)
	}
	if _, err := Tracking(value.String("efficient")); !errors.Is(err, ErrNotObject) {
		t.Errorf("err = %v, want ErrNotObject", err)
	}
}

func TestTrip(t *testing.T) {
	opts, err := Trip(obj(map[string]value.Value{
		"externalId": value.String("299"),
		"mode":       value.String("BIKE"),
		"metadata":   obj(map[string]value.Value{"parkingSpot": value.Int(5)}),
	}))
	if err != nil {
		t.Fatalf("Trip: %v", err)
	}
	if opts.ExternalID != "299" || opts.Mode != sdk.RouteModeBike {
		t.Errorf("got %+v", opts)
	}
	if opts.Metadata["parkingSpot"] != float64(5) {
		t.Errorf("metadata = %v", opts.Metadata)
	}

	opts, err = Trip(obj(map[string]value.Value{"externalId": value.String("300")}))
	if err != nil {
		t.Fatalf("Trip: %v", err)
	}
	if opts.Mode != sdk.RouteModeCar {
		t.Errorf("default mode = %s, want car", opts.Mode)
	}
}

func TestTripRequiresExternalID(t *testing.T) {
	_, err := Trip(obj(map[string]value.Value{"mode": value.String("car")}))
	var invalid *InvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidError", err)
	}
	if invalid.Error() != "externalId is required" {
		t.Errorf("message = %q", invalid.Error())
	}
}

func TestForegroundService(t *testing.T) {
	opts, err := ForegroundService(obj(map[string]value.Value{
		"text":        value.String("Tracking"),
		"updatesOnly": value.Bool(true),
		"importance":  value.Int(2),
	}))
	if err != nil {
		t.Fatalf("ForegroundService: %v", err)
	}
	if opts.Text != "Tracking" || !opts.UpdatesOnly || opts.Importance != 2 {
		t.Errorf("got %+v", opts)
	}

	if _, err := ForegroundService(obj(map[string]value.Value{"importance": value.Int(9)})); err == nil {
		t.Error("expected importance validation error")
	}
}

func TestPresets(t *testing.T) {
	preset, ok := TrackingPresets.Lookup("RESPONSIVE")
	if !ok {
		t.Fatal("responsive preset missing")
	}
	if preset != sdk.TrackingResponsive {
		t.Errorf("got %+v", preset)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	v, err := Encode(sdk.TrackingContinuous)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Tracking(v)
	if err != nil {
		t.Fatalf("Tracking: %v", err)
	}
	if back != sdk.TrackingContinuous {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, sdk.TrackingContinuous)
	}
}
