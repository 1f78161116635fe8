package sdk

import "time"

// TrackingOptions configures background tracking. Intervals are seconds,
// distances meters, durations minutes.
type TrackingOptions struct {
	DesiredStoppedUpdateInterval int             `json:"desiredStoppedUpdateInterval"`
	FastestStoppedUpdateInterval int             `json:"fastestStoppedUpdateInterval"`
	DesiredMovingUpdateInterval  int             `json:"desiredMovingUpdateInterval"`
	FastestMovingUpdateInterval  int             `json:"fastestMovingUpdateInterval"`
	DesiredSyncInterval          int             `json:"desiredSyncInterval"`
	DesiredAccuracy              DesiredAccuracy `json:"desiredAccuracy"`
	StopDuration                 int             `json:"stopDuration"`
	StopDistance                 int             `json:"stopDistance"`
	StartTrackingAfter           *time.Time      `json:"startTrackingAfter,omitempty"`
	StopTrackingAfter            *time.Time      `json:"stopTrackingAfter,omitempty"`
	Replay                       ReplayMode      `json:"replay"`
	Sync                         SyncMode        `json:"sync"`
	UseStoppedGeofence           bool            `json:"useStoppedGeofence"`
	StoppedGeofenceRadius        int             `json:"stoppedGeofenceRadius"`
	UseMovingGeofence            bool            `json:"useMovingGeofence"`
	MovingGeofenceRadius         int             `json:"movingGeofenceRadius"`
	SyncGeofences                bool            `json:"syncGeofences"`
	SyncGeofencesLimit           int             `json:"syncGeofencesLimit"`
	ForegroundServiceEnabled     bool            `json:"foregroundServiceEnabled"`
	Beacons                      bool            `json:"beacons"`
}

var (
	TrackingEfficient = TrackingOptions{
		DesiredStoppedUpdateInterval: 3600,
		FastestStoppedUpdateInterval: 1200,
		DesiredMovingUpdateInterval:  1200,
		FastestMovingUpdateInterval:  360,
		DesiredSyncInterval:          140,
		DesiredAccuracy:              AccuracyMedium,
		StopDuration:                 140,
		StopDistance:                 70,
		Replay:                       ReplayStops,
		Sync:                         SyncAll,
		SyncGeofences:                true,
		SyncGeofencesLimit:           10,
	}

	TrackingResponsive = TrackingOptions{
		DesiredStoppedUpdateInterval: 0,
		FastestStoppedUpdateInterval: 0,
		DesiredMovingUpdateInterval:  150,
		FastestMovingUpdateInterval:  30,
		DesiredSyncInterval:          20,
		DesiredAccuracy:              AccuracyMedium,
		StopDuration:                 140,
		StopDistance:                 70,
		Replay:                       ReplayStops,
		Sync:                         SyncAll,
		UseStoppedGeofence:           true,
		StoppedGeofenceRadius:        100,
		UseMovingGeofence:            true,
		MovingGeofenceRadius:         100,
		SyncGeofences:                true,
		SyncGeofencesLimit:           10,
	}

	TrackingContinuous = TrackingOptions{
		DesiredStoppedUpdateInterval: 30,
		FastestStoppedUpdateInterval: 30,
		DesiredMovingUpdateInterval:  30,
		FastestMovingUpdateInterval:  30,
		DesiredSyncInterval:          20,
		DesiredAccuracy:              AccuracyHigh,
		StopDuration:                 140,
		StopDistance:                 70,
		Replay:                       ReplayNone,
		Sync:                         SyncAll,
		SyncGeofencesLimit:           0,
		ForegroundServiceEnabled:     true,
	}
)

type TripOptions struct {
	ExternalID                    string         `json:"externalId"`
	Metadata                      map[string]any `json:"metadata,omitempty"`
	DestinationGeofenceTag        string         `json:"destinationGeofenceTag,omitempty"`
	DestinationGeofenceExternalID string         `json:"destinationGeofenceExternalId,omitempty"`
	Mode                          RouteMode      `json:"mode"`
	ScheduledArrivalAt            *time.Time     `json:"scheduledArrivalAt,omitempty"`
	ApproachingThreshold          int            `json:"approachingThreshold,omitempty"`
}

type NotificationOptions struct {
	IconString                  string `json:"iconString,omitempty"`
	IconColor                   string `json:"iconColor,omitempty"`
	ForegroundServiceIconString string `json:"foregroundServiceIconString,omitempty"`
	ForegroundServiceIconColor  string `json:"foregroundServiceIconColor,omitempty"`
	EventIconString             string `json:"eventIconString,omitempty"`
	EventIconColor              string `json:"eventIconColor,omitempty"`
}

type ForegroundServiceOptions struct {
	Text        string `json:"text,omitempty"`
	Title       string `json:"title,omitempty"`
	Icon        int    `json:"icon,omitempty"`
	UpdatesOnly bool   `json:"updatesOnly"`
	Activity    string `json:"activity,omitempty"`
	Importance  int    `json:"importance,omitempty"`
	ID          int    `json:"id,omitempty"`
	ChannelName string `json:"channelName,omitempty"`
	IconString  string `json:"iconString,omitempty"`
	IconColor   string `json:"iconColor,omitempty"`
}

type SearchPlacesParams struct {
	Near          *Location
	Radius        int
	Chains        []string
	ChainMetadata map[string]string
	Categories    []string
	Groups        []string
	Limit         int
}

type SearchGeofencesParams struct {
	Near     *Location
	Radius   int
	Tags     []string
	Metadata map[string]any
	Limit    int
}

type SearchPointsParams struct {
	Near   *Location
	Radius int
	Tags   []string
	Limit  int
}

type AutocompleteParams struct {
	Query   string
	Near    Location
	Layers  []string
	Limit   int
	Country string
}

type DistanceParams struct {
	Origin      *Location
	Destination Location
	Modes       []RouteMode
	Units       RouteUnits
}

type MatrixParams struct {
	Origins      []Location
	Destinations []Location
	Mode         RouteMode
	Units        RouteUnits
}

type MockTrackingParams struct {
	Origin      Location
	Destination Location
	Mode        RouteMode
	Steps       int
	Interval    time.Duration
}

type ConversionParams struct {
	Name     string
	Revenue  *float64
	Metadata map[string]any
}
