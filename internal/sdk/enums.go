package sdk

import (
	"encoding/json"

	"github.com/arko-chat/geobridge/internal/enum"
)

type RouteMode string

const (
	RouteModeFoot      RouteMode = "foot"
	RouteModeBike      RouteMode = "bike"
	RouteModeCar       RouteMode = "car"
	RouteModeTruck     RouteMode = "truck"
	RouteModeMotorbike RouteMode = "motorbike"
)

var RouteModes = enum.New("mode",
	enum.E("foot", RouteModeFoot),
	enum.E("bike", RouteModeBike),
	enum.E("car", RouteModeCar),
	enum.E("truck", RouteModeTruck),
	enum.E("motorbike", RouteModeMotorbike),
)

// UnmarshalJSON falls back to car for unrecognized modes.
func (m *RouteMode) UnmarshalJSON(data []byte) error {
	return decodeOr(data, RouteModes, RouteModeCar, m)
}

type RouteUnits string

const (
	UnitsImperial RouteUnits = "imperial"
	UnitsMetric   RouteUnits = "metric"
)

var Units = enum.New("units",
	enum.E("imperial", UnitsImperial),
	enum.E("metric", UnitsMetric),
)

// ParseUnits returns metric only for a case-insensitive "metric".
func ParseUnits(s string) RouteUnits {
	return Units.Or(s, UnitsImperial)
}

func (u *RouteUnits) UnmarshalJSON(data []byte) error {
	return decodeOr(data, Units, UnitsImperial, u)
}

type TripStatus string

const (
	TripStatusUnknown     TripStatus = "unknown"
	TripStatusStarted     TripStatus = "started"
	TripStatusApproaching TripStatus = "approaching"
	TripStatusArrived     TripStatus = "arrived"
	TripStatusCompleted   TripStatus = "completed"
	TripStatusCanceled    TripStatus = "canceled"
	TripStatusExpired     TripStatus = "expired"
)

var TripStatuses = enum.New("status",
	enum.E("unknown", TripStatusUnknown),
	enum.E("started", TripStatusStarted),
	enum.E("approaching", TripStatusApproaching),
	enum.E("arrived", TripStatusArrived),
	enum.E("completed", TripStatusCompleted),
	enum.E("canceled", TripStatusCanceled),
	enum.E("cancelled", TripStatusCanceled),
	enum.E("expired", TripStatusExpired),
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
)

var LogLevels = enum.New("level",
	enum.E("none", LogLevelNone),
	enum.E("error", LogLevelError),
	enum.E("warning", LogLevelWarning),
	enum.E("warn", LogLevelWarning),
	enum.E("info", LogLevelInfo),
	enum.E("debug", LogLevelDebug),
)

func (l LogLevel) String() string { return LogLevels.Name(l) }

type DesiredAccuracy string

const (
	AccuracyHigh   DesiredAccuracy = "high"
	AccuracyMedium DesiredAccuracy = "medium"
	AccuracyLow    DesiredAccuracy = "low"
)

var Accuracies = enum.New("desiredAccuracy",
	enum.E("high", AccuracyHigh),
	enum.E("medium", AccuracyMedium),
	enum.E("low", AccuracyLow),
)

func (a *DesiredAccuracy) UnmarshalJSON(data []byte) error {
	return decodeOr(data, Accuracies, AccuracyMedium, a)
}

type ReplayMode string

const (
	ReplayNone  ReplayMode = "none"
	ReplayStops ReplayMode = "stops"
	ReplayAll   ReplayMode = "all"
)

var ReplayModes = enum.New("replay",
	enum.E("none", ReplayNone),
	enum.E("stops", ReplayStops),
	enum.E("all", ReplayAll),
)

func (r *ReplayMode) UnmarshalJSON(data []byte) error {
	return decodeOr(data, ReplayModes, ReplayNone, r)
}

type SyncMode string

const (
	SyncAll           SyncMode = "all"
	SyncStopsAndExits SyncMode = "stopsAndExits"
	SyncNone          SyncMode = "none"
)

var SyncModes = enum.New("sync",
	enum.E("all", SyncAll),
	enum.E("stopsAndExits", SyncStopsAndExits),
	enum.E("none", SyncNone),
)

func (s *SyncMode) UnmarshalJSON(data []byte) error {
	return decodeOr(data, SyncModes, SyncAll, s)
}

type LocationSource string

const (
	SourceForegroundLocation LocationSource = "FOREGROUND_LOCATION"
	SourceBackgroundLocation LocationSource = "BACKGROUND_LOCATION"
	SourceManualLocation     LocationSource = "MANUAL_LOCATION"
	SourceGeofenceEnter      LocationSource = "GEOFENCE_ENTER"
	SourceGeofenceExit       LocationSource = "GEOFENCE_EXIT"
	SourceMockLocation       LocationSource = "MOCK_LOCATION"
	SourceUnknown            LocationSource = "UNKNOWN"
)

// decodeOr decodes a JSON string through table, using def when the
// string is unrecognized or the field is null.
func decodeOr[T comparable](data []byte, table *enum.Table[T], def T, dst *T) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*dst = def
		return nil
	}
	*dst = table.Or(*s, def)
	return nil
}
