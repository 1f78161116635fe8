package dispatch

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/arko-chat/geobridge/internal/enum"
	"github.com/arko-chat/geobridge/internal/options"
	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/value"
)

// ValidationError is an argument that was absent, of the wrong kind or
// out of range. Its message is the rejection reason sent on the wire.
type ValidationError struct {
	Field string
	// Reason defaults to "is required".
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return e.Field + " is required"
	}
	return e.Field + " " + e.Reason
}

func required(field string) error { return &ValidationError{Field: field} }

// invalid restates a parse failure for the argument field in wire terms.
func invalid(field string, err error) error {
	var (
		unknown *enum.UnknownError
		bad     *options.InvalidError
		typ     *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &unknown):
		return &ValidationError{Field: unknown.Enum, Reason: "must be one of " + strings.Join(unknown.Allowed, ", ")}
	case errors.As(err, &bad):
		return &ValidationError{Field: bad.Field, Reason: bad.Reason}
	case errors.As(err, &typ) && typ.Field != "":
		return &ValidationError{Field: typ.Field, Reason: "is invalid"}
	}
	return &ValidationError{Field: field, Reason: "is invalid"}
}

// Args reads command arguments. A key holding null counts as absent.
type Args struct {
	v value.Value
}

func (a Args) Has(key string) bool { return a.v.Has(key) }

func (a Args) get(key string) (value.Value, bool) {
	v, ok := a.v.Get(key)
	if !ok || v.IsNull() {
		return value.Null(), false
	}
	return v, true
}

func (a Args) String(key string) (string, bool) {
	v, ok := a.get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (a Args) Float(key string) (float64, bool) {
	v, ok := a.get(key)
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

// Int returns the integer under key, or def when absent.
func (a Args) Int(key string, def int) int {
	n, ok := a.Float(key)
	if !ok {
		return def
	}
	return int(math.Round(n))
}

func (a Args) Bool(key string) (bool, bool) {
	v, ok := a.get(key)
	if !ok {
		return false, false
	}
	return v.AsBool()
}

func (a Args) Object(key string) (value.Value, bool) {
	v, ok := a.get(key)
	if !ok || v.Kind() != value.ObjectKind {
		return value.Null(), false
	}
	return v, true
}

// Array returns the elements under key; false when absent or not an
// array.
func (a Args) Array(key string) ([]value.Value, bool) {
	v, ok := a.get(key)
	if !ok {
		return nil, false
	}
	return v.AsArray()
}

// Strings returns the string elements under key; other elements are
// skipped.
func (a Args) Strings(key string) []string {
	items, _ := a.Array(key)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.AsString(); ok {
			out = append(out, s)
		}
	}
	return out
}

// Location reads an object {latitude, longitude, accuracy?} under key.
func (a Args) Location(key string) (sdk.Location, bool) {
	obj, ok := a.Object(key)
	if !ok {
		return sdk.Location{}, false
	}
	return Args{v: obj}.Point()
}

// Locations reads an array of location objects under key. Elements that
// are not locations are skipped.
func (a Args) Locations(key string) ([]sdk.Location, bool) {
	v, ok := a.get(key)
	if !ok {
		return nil, false
	}
	items, ok := v.AsArray()
	if !ok {
		return nil, false
	}
	out := make([]sdk.Location, 0, len(items))
	for _, item := range items {
		if loc, ok := (Args{v: item}).Point(); ok {
			out = append(out, loc)
		}
	}
	return out, true
}

// Point reads top-level latitude and longitude. Accuracy defaults to
// options.DefaultAccuracy.
func (a Args) Point() (sdk.Location, bool) {
	lat, okLat := a.Float("latitude")
	lng, okLng := a.Float("longitude")
	if !okLat || !okLng {
		return sdk.Location{}, false
	}
	acc, ok := a.Float("accuracy")
	if !ok {
		acc = options.DefaultAccuracy
	}
	return sdk.Location{Latitude: lat, Longitude: lng, Accuracy: acc}, true
}

// Native returns the object under key as a native map.
func (a Args) Native(key string) (map[string]any, bool) {
	obj, ok := a.Object(key)
	if !ok {
		return nil, false
	}
	return value.ToNativeObject(obj), true
}
