// Package options builds the SDK's typed configuration records from the
// untyped objects sent by the application. Each record is decoded over a
// copy of its defaults, so a field missing from the input keeps its
// default, and unknown keys are ignored.
package options

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arko-chat/geobridge/internal/enum"
	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/value"
)

var ErrNotObject = errors.New("options: not an object")

// InvalidError is a field that decoded but failed validation.
type InvalidError struct {
	Field  string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

const (
	DefaultSearchRadius = 1000
	DefaultSearchLimit  = 10
	DefaultMockSteps    = 10
	DefaultMockInterval = 1
	DefaultAccuracy     = 5.0
)

var TrackingPresets = enum.New("preset",
	enum.E("efficient", sdk.TrackingEfficient),
	enum.E("responsive", sdk.TrackingResponsive),
	enum.E("continuous", sdk.TrackingContinuous),
)

func decode[T any](v value.Value, defaults T) (T, error) {
	if v.Kind() != value.ObjectKind {
		return defaults, ErrNotObject
	}
	data, err := json.Marshal(v)
	if err != nil {
		return defaults, fmt.Errorf("options: encode: %w", err)
	}
	out := defaults
	if err := json.Unmarshal(data, &out); err != nil {
		return defaults, fmt.Errorf("options: decode: %w", err)
	}
	return out, nil
}

func Tracking(v value.Value) (sdk.TrackingOptions, error) {
	opts, err := decode(v, sdk.TrackingEfficient)
	if err != nil {
		return opts, err
	}

	for field, n := range map[string]int{
		"desiredStoppedUpdateInterval": opts.DesiredStoppedUpdateInterval,
		"fastestStoppedUpdateInterval": opts.FastestStoppedUpdateInterval,
		"desiredMovingUpdateInterval":  opts.DesiredMovingUpdateInterval,
		"fastestMovingUpdateInterval":  opts.FastestMovingUpdateInterval,
		"desiredSyncInterval":          opts.DesiredSyncInterval,
		"stopDuration":                 opts.StopDuration,
		"stopDistance":                 opts.StopDistance,
		"syncGeofencesLimit":           opts.SyncGeofencesLimit,
	} {
		if n < 0 {
			return opts, &InvalidError{Field: field, Reason: "must not be negative"}
		}
	}
	if opts.UseStoppedGeofence && opts.StoppedGeofenceRadius <= 0 {
		return opts, &InvalidError{Field: "stoppedGeofenceRadius", Reason: "must be positive"}
	}
	if opts.UseMovingGeofence && opts.MovingGeofenceRadius <= 0 {
		return opts, &InvalidError{Field: "movingGeofenceRadius", Reason: "must be positive"}
	}
	if opts.StartTrackingAfter != nil && opts.StopTrackingAfter != nil &&
		opts.StopTrackingAfter.Before(*opts.StartTrackingAfter) {
		return opts, &InvalidError{Field: "stopTrackingAfter", Reason: "must not be before startTrackingAfter"}
	}
	return opts, nil
}

func Trip(v value.Value) (sdk.TripOptions, error) {
	opts, err := decode(v, sdk.TripOptions{Mode: sdk.RouteModeCar})
	if err != nil {
		return opts, err
	}
	if opts.ExternalID == "" {
		return opts, &InvalidError{Field: "externalId", Reason: "is required"}
	}
	if opts.ApproachingThreshold < 0 {
		return opts, &InvalidError{Field: "approachingThreshold", Reason: "must not be negative"}
	}
	return opts, nil
}

func Notification(v value.Value) (sdk.NotificationOptions, error) {
	return decode(v, sdk.NotificationOptions{})
}

func ForegroundService(v value.Value) (sdk.ForegroundServiceOptions, error) {
	opts, err := decode(v, sdk.ForegroundServiceOptions{})
	if err != nil {
		return opts, err
	}
	if opts.Importance < 0 || opts.Importance > 5 {
		return opts, &InvalidError{Field: "importance", Reason: "must be between 0 and 5"}
	}
	return opts, nil
}

// Encode renders a record back into a Value for getter commands.
func Encode(record any) (value.Value, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return value.Null(), fmt.Errorf("options: encode: %w", err)
	}
	var v value.Value
	if err := json.Unmarshal(data, &v); err != nil {
		return value.Null(), fmt.Errorf("options: encode: %w", err)
	}
	return v, nil
}
