package sdk

import (
	"maps"
	"time"
)

type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Location is a device fix.
type Location struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Altitude  float64
	Speed     float64
	Course    float64
	Mocked    bool
	Time      time.Time
}

func (l Location) Coordinate() Coordinate {
	return Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// JSON renders the location the way the SDK serializes it. Unset
// optional fields are left out.
func (l Location) JSON() map[string]any {
	out := map[string]any{
		"latitude":  l.Latitude,
		"longitude": l.Longitude,
		"accuracy":  l.Accuracy,
		"mocked":    l.Mocked,
	}
	if l.Altitude != 0 {
		out["altitude"] = l.Altitude
	}
	if l.Speed != 0 {
		out["speed"] = l.Speed
	}
	if l.Course != 0 {
		out["course"] = l.Course
	}
	if !l.Time.IsZero() {
		out["time"] = l.Time.UnixMilli()
	}
	return out
}

// Record is an SDK model object (event, user, place, geofence, address,
// trip, context, routes, matrix, token) in its native JSON-like form.
type Record map[string]any

func (r Record) JSON() map[string]any { return r }

func (r Record) GetString(key string) string {
	s, _ := r[key].(string)
	return s
}

func (r Record) Clone() Record {
	return maps.Clone(r)
}
